package domain

import (
	"context"
	"time"
)

// Names of the items inside a radar record's structured payload.
const (
	PayloadData            = "Data"
	PayloadAngles          = "Angles"
	PayloadDependentValues = "DependentValues"
	PayloadThresholds      = "Thresholds"
)

// DataRecord is one named array from a radar record's structured payload.
// Only the slice matching the stored type is populated.
type DataRecord struct {
	Name      string    `json:"name"`
	Sizes     []int     `json:"sizes,omitempty"`
	ByteData  []int8    `json:"byteData,omitempty"`
	FloatData []float32 `json:"floatData,omitempty"`
	ShortData []int16   `json:"shortData,omitempty"`
}

// RadarRecord is a single observation returned by the data service.
type RadarRecord struct {
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	DataTime  time.Time    `json:"dataTime"`
	Payload   []DataRecord `json:"payload"`
}

// DataAccess is the remote data-access collaborator.
type DataAccess interface {
	// AvailableTimes lists observation times matching a catalog request.
	AvailableTimes(ctx context.Context, req DataRequest) ([]time.Time, error)

	// RadarRecords fetches the records matching a product request.
	RadarRecords(ctx context.Context, req ProductRequest) ([]RadarRecord, error)
}
