package domain

import (
	"fmt"
	"math"
)

// Reckoner solves the direct geodesic problem for one bearing and many distances.
type Reckoner interface {
	ReckonRay(lat, lon float64, distances []float64, azimuth float64) (lats, lons []float64, err error)
}

// GeoGrid holds projected sample positions indexed [rangeIndex][azimuthIndex].
type GeoGrid struct {
	Ranges   []float64   `json:"ranges"`
	Azimuths []float64   `json:"azimuths"`
	Lats     [][]float64 `json:"-"`
	Lons     [][]float64 `json:"-"`
}

// Bounds is the geographic bounding box of a projected grid.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// RangeVector returns gates+1 bin-edge distances from 0 to gates*resolution.
func RangeVector(gates int, resolution float64) []float64 {
	if gates < 0 {
		gates = 0
	}
	out := make([]float64, gates+1)
	for i := range out {
		out[i] = float64(i) * resolution
	}
	return out
}

// Project reckons every (range, azimuth) pair of a decoded grid outward from
// the site location. Each azimuth fills its own column of the output grid.
func Project(lat, lon float64, grid DerivedGrid, resolution float64, reckoner Reckoner) (GeoGrid, error) {
	if len(grid.Azimuths) == 0 {
		return GeoGrid{}, ErrNoAzimuths
	}

	ranges := RangeVector(grid.Gates, resolution)
	out := GeoGrid{
		Ranges:   ranges,
		Azimuths: grid.Azimuths,
		Lats:     make([][]float64, len(ranges)),
		Lons:     make([][]float64, len(ranges)),
	}
	for i := range ranges {
		out.Lats[i] = make([]float64, len(grid.Azimuths))
		out.Lons[i] = make([]float64, len(grid.Azimuths))
	}

	for j, az := range grid.Azimuths {
		lats, lons, err := reckoner.ReckonRay(lat, lon, ranges, az)
		if err != nil {
			return GeoGrid{}, fmt.Errorf("reckon azimuth %g: %w", az, err)
		}
		for i := range ranges {
			out.Lats[i][j] = lats[i]
			out.Lons[i][j] = lons[i]
		}
	}
	return out, nil
}

// Bounds scans the grid for its extent. A zero Bounds is returned for an
// empty grid.
func (g GeoGrid) Bounds() Bounds {
	b := Bounds{MinLat: math.Inf(1), MaxLat: math.Inf(-1), MinLon: math.Inf(1), MaxLon: math.Inf(-1)}
	seen := false
	for i := range g.Lats {
		for j := range g.Lats[i] {
			seen = true
			b.MinLat = math.Min(b.MinLat, g.Lats[i][j])
			b.MaxLat = math.Max(b.MaxLat, g.Lats[i][j])
			b.MinLon = math.Min(b.MinLon, g.Lons[i][j])
			b.MaxLon = math.Max(b.MaxLon, g.Lons[i][j])
		}
	}
	if !seen {
		return Bounds{}
	}
	return b
}
