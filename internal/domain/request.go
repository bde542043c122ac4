package domain

import (
	"fmt"
	"time"
)

// RadarDatatype is the catalog datatype for NEXRAD Level-III records.
const RadarDatatype = "radar"

// TimeRange bounds the product times requested from the data service.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s - %s", r.Start.UTC().Format(time.RFC3339), r.End.UTC().Format(time.RFC3339))
}

// DataRequest is the generic catalog query used to list available times.
type DataRequest struct {
	Datatype      string   `json:"datatype"`
	LocationNames []string `json:"locationNames"`
}

// ProductRequest fully determines which radar records are fetched.
type ProductRequest struct {
	Site        string    `json:"radarId"`
	ProductCode int       `json:"productCode"`
	Elevation   string    `json:"primaryElevationAngle"`
	TimeRange   TimeRange `json:"timeRange"`
}

// NewDataRequest scopes a radar catalog query to a single site.
func NewDataRequest(site string) DataRequest {
	return DataRequest{
		Datatype:      RadarDatatype,
		LocationNames: []string{NormalizeSite(site)},
	}
}

// NewTimeRange spans the earliest to the latest of the given times.
func NewTimeRange(times []time.Time) (TimeRange, error) {
	if len(times) == 0 {
		return TimeRange{}, ErrNoAvailableTimes
	}
	tr := TimeRange{Start: times[0], End: times[0]}
	for _, t := range times[1:] {
		if t.Before(tr.Start) {
			tr.Start = t
		}
		if t.After(tr.End) {
			tr.End = t
		}
	}
	return tr, nil
}

// NewProductRequest builds the product-specific request for a site.
func NewProductRequest(site string, product Product, tr TimeRange) ProductRequest {
	return ProductRequest{
		Site:        NormalizeSite(site),
		ProductCode: product.ID,
		Elevation:   product.Elevation,
		TimeRange:   tr,
	}
}
