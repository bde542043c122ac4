package domain

import (
	"fmt"
	"math"
)

// DerivedGrid is a decoded radar record.
type DerivedGrid struct {
	Radials int
	Gates   int

	// Pixels holds unsigned levels indexed [radial][gate].
	Pixels [][]uint8

	// Azimuths has Radials+1 entries (last value repeated) or is nil when the
	// record carried no angles.
	Azimuths []float64

	DependentValues []int16
	Thresholds      []int16
}

// UnsignedLevel corrects a two's-complement stored byte into 0..255.
func UnsignedLevel(raw int8) uint8 {
	v := int(raw)
	if v < 0 {
		v += 256
	}
	return uint8(v)
}

// RemapBytes converts a flat signed byte array into unsigned levels.
func RemapBytes(raw []int8) []uint8 {
	out := make([]uint8, len(raw))
	for i, v := range raw {
		out[i] = UnsignedLevel(v)
	}
	return out
}

// EncodeRadial converts stored angles into radial azimuths in [0, 360).
func EncodeRadial(angles []float32) []float64 {
	out := make([]float64, len(angles))
	for i, a := range angles {
		az := math.Mod(float64(a), 360)
		if az < 0 {
			az += 360
		}
		out[i] = az
	}
	return out
}

// PadAzimuths closes the circular boundary by repeating the last azimuth, so
// the azimuth axis has one more entry than there are radials, matching the
// bin-edge padding of the range axis.
func PadAzimuths(az []float64) []float64 {
	if len(az) == 0 {
		return az
	}
	out := make([]float64, len(az), len(az)+1)
	copy(out, az)
	return append(out, az[len(az)-1])
}

// DecodeRecord extracts the pixel grid, azimuths and auxiliary arrays from a
// record's payload.
func DecodeRecord(rec RadarRecord) (DerivedGrid, error) {
	var data, angles *DataRecord
	var grid DerivedGrid

	for i := range rec.Payload {
		item := &rec.Payload[i]
		switch item.Name {
		case PayloadData:
			data = item
		case PayloadAngles:
			angles = item
		case PayloadDependentValues:
			grid.DependentValues = item.ShortData
		case PayloadThresholds:
			grid.Thresholds = item.ShortData
		}
	}
	if data == nil {
		return DerivedGrid{}, ErrMissingData
	}
	if len(data.Sizes) != 2 {
		return DerivedGrid{}, fmt.Errorf("%w: Data sizes %v", ErrMalformedPayload, data.Sizes)
	}

	radials, gates := data.Sizes[0], data.Sizes[1]
	// Divide rather than multiply so oversized declared sizes cannot overflow.
	if radials <= 0 || gates <= 0 || gates > len(data.ByteData)/radials || len(data.ByteData) != radials*gates {
		return DerivedGrid{}, fmt.Errorf("%w: %d bytes for %d radials x %d gates",
			ErrMalformedPayload, len(data.ByteData), radials, gates)
	}

	levels := RemapBytes(data.ByteData)
	grid.Radials = radials
	grid.Gates = gates
	grid.Pixels = make([][]uint8, radials)
	for r := 0; r < radials; r++ {
		grid.Pixels[r] = levels[r*gates : (r+1)*gates : (r+1)*gates]
	}

	if angles != nil && len(angles.FloatData) > 0 {
		if len(angles.FloatData) != radials {
			return DerivedGrid{}, fmt.Errorf("%w: %d angles for %d radials",
				ErrMalformedPayload, len(angles.FloatData), radials)
		}
		grid.Azimuths = PadAzimuths(EncodeRadial(angles.FloatData))
	}

	return grid, nil
}
