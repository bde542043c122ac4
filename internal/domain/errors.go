package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable matches any *DataUnavailableError via errors.Is.
	ErrDataUnavailable = errors.New("data not available")

	// ErrNoAvailableTimes means the catalog listed no observation times for a site.
	ErrNoAvailableTimes = errors.New("no available times")

	ErrMissingData      = errors.New("record payload has no Data item")
	ErrMalformedPayload = errors.New("malformed record payload")
	ErrNoAzimuths       = errors.New("record has no azimuth angles")

	// ErrSweepNotFound is returned by archive lookups that match no sweep.
	ErrSweepNotFound = errors.New("sweep not found")
)

// DataUnavailableError reports a product request that returned zero records.
type DataUnavailableError struct {
	Site      string
	TimeRange TimeRange
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data not available %s", e.TimeRange)
}

func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}
