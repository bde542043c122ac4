package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-radar-etl/internal/domain"
	"github.com/couchcryptid/storm-radar-etl/internal/observability"
)

// Batch is the set of records returned for one site.
type Batch struct {
	Site    string
	Product domain.Product
	Request domain.ProductRequest
	Records []domain.RadarRecord
}

// RadarExtractor builds the product request for a site and fetches its records.
type RadarExtractor struct {
	access  domain.DataAccess
	product domain.Product
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewExtractor creates a RadarExtractor for one product.
func NewExtractor(access domain.DataAccess, product domain.Product, logger *slog.Logger, metrics *observability.Metrics) *RadarExtractor {
	return &RadarExtractor{
		access:  access,
		product: product,
		logger:  logger,
		metrics: metrics,
	}
}

// Extract lists the site's available times, requests every product record in
// that span and returns them. Zero records is a *domain.DataUnavailableError.
func (e *RadarExtractor) Extract(ctx context.Context, site string) (Batch, error) {
	start := time.Now()
	site = domain.NormalizeSite(site)

	times, err := e.access.AvailableTimes(ctx, domain.NewDataRequest(site))
	if err != nil {
		e.metrics.FetchErrors.Inc()
		return Batch{}, fmt.Errorf("list available times for %s: %w", site, err)
	}

	tr, err := domain.NewTimeRange(times)
	if err != nil {
		return Batch{}, fmt.Errorf("%s: %w", site, err)
	}

	req := domain.NewProductRequest(site, e.product, tr)
	records, err := e.access.RadarRecords(ctx, req)
	if err != nil {
		e.metrics.FetchErrors.Inc()
		return Batch{}, fmt.Errorf("fetch radar records: %w", err)
	}
	e.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	e.logger.Info(fmt.Sprintf("found %d records at %s", len(records), site),
		"site", site,
		"product", e.product.Code,
		"records", len(records),
		"time_range", tr.String(),
	)

	if len(records) == 0 {
		e.metrics.DataUnavailable.Inc()
		return Batch{}, &domain.DataUnavailableError{Site: site, TimeRange: tr}
	}
	e.metrics.RecordsFetched.Add(float64(len(records)))

	return Batch{
		Site:    site,
		Product: e.product,
		Request: req,
		Records: records,
	}, nil
}
