package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Sweep is a decoded and projected radar record ready for the sinks.
type Sweep struct {
	ID          string
	Site        string
	Product     Product
	ValidTime   time.Time
	Latitude    float64
	Longitude   float64
	Grid        DerivedGrid
	Geo         GeoGrid
	Bounds      Bounds
	ProcessedAt time.Time
}

// NewSweep assembles a sweep and stamps it with the package clock.
func NewSweep(site string, product Product, rec RadarRecord, grid DerivedGrid, geo GeoGrid) Sweep {
	site = NormalizeSite(site)
	return Sweep{
		ID:          sweepID(site, product.Code, rec.DataTime, rec.Latitude, rec.Longitude),
		Site:        site,
		Product:     product,
		ValidTime:   rec.DataTime,
		Latitude:    rec.Latitude,
		Longitude:   rec.Longitude,
		Grid:        grid,
		Geo:         geo,
		Bounds:      geo.Bounds(),
		ProcessedAt: clock.Now(),
	}
}

// sweepID hashes the identifying fields so reprocessing the same record
// yields the same ID.
func sweepID(site, code string, valid time.Time, lat, lon float64) string {
	input := fmt.Sprintf("%s|%s|%s|%.4f|%.4f", site, code, valid.UTC().Format(time.RFC3339), lat, lon)
	hash := sha256.Sum256([]byte(input))
	return site + "-" + code + "-" + hex.EncodeToString(hash[:8])
}

// CompactSweep is the serialized form of a sweep published to the sinks. The
// projected lat/lon grid is omitted; consumers re-derive it from the site
// location, azimuths and ranges.
type CompactSweep struct {
	ID          string    `json:"id"`
	Site        string    `json:"site"`
	Product     string    `json:"product"`
	ProductID   int       `json:"product_id"`
	Unit        string    `json:"unit"`
	ColorTable  string    `json:"color_table"`
	ValidTime   time.Time `json:"valid_time"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Radials     int       `json:"radials"`
	Gates       int       `json:"gates"`
	Pixels      [][]uint8 `json:"pixels"` // one base64 string per radial
	Azimuths    []float64 `json:"azimuths"`
	Ranges      []float64 `json:"ranges"`
	Thresholds  []int16   `json:"thresholds,omitempty"`
	Dependent   []int16   `json:"dependent_values,omitempty"`
	Bounds      Bounds    `json:"bounds"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Compact flattens a sweep into its serialized form.
func (s Sweep) Compact() CompactSweep {
	return CompactSweep{
		ID:          s.ID,
		Site:        s.Site,
		Product:     s.Product.Code,
		ProductID:   s.Product.ID,
		Unit:        s.Product.Unit,
		ColorTable:  s.Product.ColorTable.Name,
		ValidTime:   s.ValidTime.UTC(),
		Latitude:    s.Latitude,
		Longitude:   s.Longitude,
		Radials:     s.Grid.Radials,
		Gates:       s.Grid.Gates,
		Pixels:      s.Grid.Pixels,
		Azimuths:    s.Grid.Azimuths,
		Ranges:      s.Geo.Ranges,
		Thresholds:  s.Grid.Thresholds,
		Dependent:   s.Grid.DependentValues,
		Bounds:      s.Bounds,
		ProcessedAt: s.ProcessedAt.UTC(),
	}
}

// Validate checks the shape invariants of a serialized sweep.
func (c CompactSweep) Validate() error {
	if len(c.Pixels) != c.Radials {
		return fmt.Errorf("%s: %d pixel rows for %d radials", c.ID, len(c.Pixels), c.Radials)
	}
	for r, row := range c.Pixels {
		if len(row) != c.Gates {
			return fmt.Errorf("%s: radial %d has %d gates, want %d", c.ID, r, len(row), c.Gates)
		}
	}
	if len(c.Azimuths) != c.Radials+1 {
		return fmt.Errorf("%s: %d azimuths for %d radials", c.ID, len(c.Azimuths), c.Radials)
	}
	if n := len(c.Azimuths); n >= 2 && c.Azimuths[n-1] != c.Azimuths[n-2] {
		return fmt.Errorf("%s: azimuth padding does not repeat the last value", c.ID)
	}
	if len(c.Ranges) != c.Gates+1 {
		return fmt.Errorf("%s: %d ranges for %d gates", c.ID, len(c.Ranges), c.Gates)
	}
	if len(c.Ranges) > 0 && c.Ranges[0] != 0 {
		return fmt.Errorf("%s: range vector starts at %g", c.ID, c.Ranges[0])
	}
	for i := 1; i < len(c.Ranges); i++ {
		if c.Ranges[i] <= c.Ranges[i-1] {
			return fmt.Errorf("%s: range vector not increasing at %d", c.ID, i)
		}
	}
	if c.Bounds.MinLat > c.Bounds.MaxLat || c.Bounds.MinLon > c.Bounds.MaxLon {
		return fmt.Errorf("%s: inverted bounds %+v", c.ID, c.Bounds)
	}
	return nil
}
