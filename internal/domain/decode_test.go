package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsignedLevel(t *testing.T) {
	assert.Equal(t, uint8(251), UnsignedLevel(-5))
	assert.Equal(t, uint8(0), UnsignedLevel(0))
	assert.Equal(t, uint8(127), UnsignedLevel(127))
	assert.Equal(t, uint8(128), UnsignedLevel(-128))
	assert.Equal(t, uint8(255), UnsignedLevel(-1))
}

func TestUnsignedLevel_AllValues(t *testing.T) {
	for v := -128; v <= 127; v++ {
		got := int(UnsignedLevel(int8(v)))
		want := v
		if v < 0 {
			want = v + 256
		}
		assert.Equal(t, want, got, "raw %d", v)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 255)
	}
}

func TestRemapBytes(t *testing.T) {
	assert.Equal(t, []uint8{0, 5, 251, 128}, RemapBytes([]int8{0, 5, -5, -128}))
	assert.Empty(t, RemapBytes(nil))
}

func TestPadAzimuths(t *testing.T) {
	in := []float64{10, 20, 30}
	out := PadAzimuths(in)

	assert.Equal(t, []float64{10, 20, 30, 30}, out)
	assert.Len(t, out, len(in)+1)
	assert.Equal(t, out[len(out)-1], out[len(out)-2])
	assert.Equal(t, []float64{10, 20, 30}, in, "input must not be modified")
	assert.Empty(t, PadAzimuths(nil))
}

func TestEncodeRadial(t *testing.T) {
	assert.Equal(t, []float64{0, 10.5, 359.5, 0, 90}, EncodeRadial([]float32{0, 10.5, -0.5, 360, 450}))
}

func TestDecodeRecord(t *testing.T) {
	rec := RadarRecord{
		Latitude:  37.155,
		Longitude: -121.898,
		Payload: []DataRecord{
			{Name: PayloadThresholds, ShortData: []int16{1, 2, 3}},
			{Name: PayloadData, Sizes: []int{2, 3}, ByteData: []int8{0, 10, -5, 127, -128, -1}},
			{Name: PayloadAngles, FloatData: []float32{10, 20}},
			{Name: PayloadDependentValues, ShortData: []int16{7}},
		},
	}

	grid, err := DecodeRecord(rec)
	require.NoError(t, err)

	assert.Equal(t, 2, grid.Radials)
	assert.Equal(t, 3, grid.Gates)
	assert.Equal(t, [][]uint8{{0, 10, 251}, {127, 128, 255}}, grid.Pixels)
	assert.Equal(t, []float64{10, 20, 20}, grid.Azimuths)
	assert.Len(t, grid.Azimuths, grid.Radials+1)
	assert.Equal(t, []int16{1, 2, 3}, grid.Thresholds)
	assert.Equal(t, []int16{7}, grid.DependentValues)
}

func TestDecodeRecord_NoAngles(t *testing.T) {
	rec := RadarRecord{Payload: []DataRecord{
		{Name: PayloadData, Sizes: []int{1, 2}, ByteData: []int8{1, 2}},
	}}
	grid, err := DecodeRecord(rec)
	require.NoError(t, err)
	assert.Nil(t, grid.Azimuths)
}

func TestDecodeRecord_Errors(t *testing.T) {
	cases := []struct {
		name    string
		payload []DataRecord
		want    error
	}{
		{
			name:    "missing data",
			payload: []DataRecord{{Name: PayloadAngles, FloatData: []float32{1}}},
			want:    ErrMissingData,
		},
		{
			name:    "bad sizes",
			payload: []DataRecord{{Name: PayloadData, Sizes: []int{4}, ByteData: []int8{1, 2, 3, 4}}},
			want:    ErrMalformedPayload,
		},
		{
			name:    "short byte data",
			payload: []DataRecord{{Name: PayloadData, Sizes: []int{2, 2}, ByteData: []int8{1, 2, 3}}},
			want:    ErrMalformedPayload,
		},
		{
			name:    "sizes overflow",
			payload: []DataRecord{{Name: PayloadData, Sizes: []int{4, 1 << 62}}},
			want:    ErrMalformedPayload,
		},
		{
			name:    "sizes overflow with data",
			payload: []DataRecord{{Name: PayloadData, Sizes: []int{1 << 62, 4}, ByteData: []int8{1, 2, 3, 4}}},
			want:    ErrMalformedPayload,
		},
		{
			name: "angle count mismatch",
			payload: []DataRecord{
				{Name: PayloadData, Sizes: []int{3, 1}, ByteData: []int8{1, 2, 3}},
				{Name: PayloadAngles, FloatData: []float32{10, 20}},
			},
			want: ErrMalformedPayload,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeRecord(RadarRecord{Payload: tc.payload})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
