// Package mock provides synthetic radar fixtures and an in-process stand-in
// for the data-access gateway, used by tests and local development.
package mock

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/storm-radar-etl/internal/domain"
)

// Fixture is the gateway content for one site.
type Fixture struct {
	Site    string               `json:"site"`
	Times   []time.Time          `json:"times"`
	Records []domain.RadarRecord `json:"records"`
}

// SyntheticFixture builds n records for a site, five minutes apart starting at
// start. Each record has the given radial and gate counts, evenly spaced
// angles and a deterministic pixel pattern that covers negative stored bytes.
func SyntheticFixture(site string, lat, lon float64, start time.Time, n, radials, gates int) Fixture {
	f := Fixture{Site: domain.NormalizeSite(site)}
	for i := 0; i < n; i++ {
		t := start.Add(time.Duration(i) * 5 * time.Minute).UTC()
		f.Times = append(f.Times, t)
		f.Records = append(f.Records, syntheticRecord(lat, lon, t, i, radials, gates))
	}
	return f
}

func syntheticRecord(lat, lon float64, t time.Time, seed, radials, gates int) domain.RadarRecord {
	data := make([]int8, radials*gates)
	for r := 0; r < radials; r++ {
		for g := 0; g < gates; g++ {
			data[r*gates+g] = int8(uint8((r*7 + g*3 + seed*11) % 256)) //nolint:gosec // two's-complement storage
		}
	}

	angles := make([]float32, radials)
	step := 360 / float32(radials)
	for r := range angles {
		angles[r] = float32(r)*step + step/2
	}

	return domain.RadarRecord{
		Latitude:  lat,
		Longitude: lon,
		DataTime:  t,
		Payload: []domain.DataRecord{
			{Name: domain.PayloadData, Sizes: []int{radials, gates}, ByteData: data},
			{Name: domain.PayloadAngles, Sizes: []int{radials}, FloatData: angles},
			{Name: domain.PayloadThresholds, ShortData: []int16{-320, 5, 254, 0}},
			{Name: domain.PayloadDependentValues, ShortData: []int16{0, 0, 0}},
		},
	}
}

// LoadFixtures reads a JSON array of fixtures from path.
func LoadFixtures(path string) ([]Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var out []Fixture
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return out, nil
}

// WriteFixtures writes fixtures to path as indented JSON.
func WriteFixtures(path string, fixtures []Fixture) error {
	data, err := json.MarshalIndent(fixtures, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixtures: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // fixture file
		return fmt.Errorf("write fixtures: %w", err)
	}
	return nil
}
