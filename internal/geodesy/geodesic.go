// Package geodesy solves the direct geodesic problem on the WGS-84 ellipsoid.
//
// Given an origin, an initial bearing and a distance along the surface,
// [Reckon] returns the destination point and the forward azimuth there.
// Angles are in degrees, distances in metres.
package geodesy

import (
	"errors"
	"math"

	"github.com/tidwall/geodesic"
)

// ErrInvalidInput is returned for NaN or infinite coordinates, bearings or
// distances.
var ErrInvalidInput = errors.New("geodesy: invalid input")

// Point is a destination computed by Reckon.
type Point struct {
	Lat     float64
	Lon     float64
	Azimuth float64 // forward azimuth at the destination, degrees in [0, 360)
}

// Reckon walks distance metres from (lat, lon) along the initial bearing
// azimuth and returns the destination point.
func Reckon(lat, lon, distance, azimuth float64) (Point, error) {
	if !finite(lat, lon, distance, azimuth) {
		return Point{}, ErrInvalidInput
	}
	if distance == 0 {
		return Point{Lat: lat, Lon: normalizeLon(lon), Azimuth: normalizeAzimuth(azimuth)}, nil
	}

	var lat2, lon2, azi2 float64
	geodesic.WGS84.Direct(lat, lon, azimuth, distance, &lat2, &lon2, &azi2)
	if !finite(lat2, lon2, azi2) {
		return Point{}, ErrInvalidInput
	}
	return Point{Lat: lat2, Lon: normalizeLon(lon2), Azimuth: normalizeAzimuth(azi2)}, nil
}

// ReckonRay reckons every distance in distances from the same origin along a
// single bearing. The returned slices have len(distances) elements.
func ReckonRay(lat, lon float64, distances []float64, azimuth float64) (lats, lons, azimuths []float64, err error) {
	lats = make([]float64, len(distances))
	lons = make([]float64, len(distances))
	azimuths = make([]float64, len(distances))
	for i, d := range distances {
		p, err := Reckon(lat, lon, d, azimuth)
		if err != nil {
			return nil, nil, nil, err
		}
		lats[i], lons[i], azimuths[i] = p.Lat, p.Lon, p.Azimuth
	}
	return lats, lons, azimuths, nil
}

// WGS84 is a stateless Reckoner on the WGS-84 ellipsoid.
type WGS84 struct{}

// ReckonRay implements domain.Reckoner.
func (WGS84) ReckonRay(lat, lon float64, distances []float64, azimuth float64) ([]float64, []float64, error) {
	lats, lons, _, err := ReckonRay(lat, lon, distances, azimuth)
	return lats, lons, err
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// normalizeLon maps a longitude into [-180, 180).
func normalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func normalizeAzimuth(az float64) float64 {
	az = math.Mod(az, 360)
	if az < 0 {
		az += 360
	}
	return az
}
