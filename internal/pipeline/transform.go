package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-radar-etl/internal/domain"
	"github.com/couchcryptid/storm-radar-etl/internal/observability"
)

// SweepTransformer decodes a record and projects it onto the globe.
type SweepTransformer struct {
	reckoner domain.Reckoner
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates a SweepTransformer using the given reckoner.
func NewTransformer(reckoner domain.Reckoner, logger *slog.Logger, metrics *observability.Metrics) *SweepTransformer {
	return &SweepTransformer{
		reckoner: reckoner,
		logger:   logger,
		metrics:  metrics,
	}
}

func (t *SweepTransformer) Transform(ctx context.Context, site string, product domain.Product, rec domain.RadarRecord) (domain.Sweep, error) {
	if err := ctx.Err(); err != nil {
		return domain.Sweep{}, err
	}

	grid, err := domain.DecodeRecord(rec)
	if err != nil {
		return domain.Sweep{}, fmt.Errorf("decode record %s: %w", rec.DataTime.UTC().Format(time.RFC3339), err)
	}

	start := time.Now()
	geo, err := domain.Project(rec.Latitude, rec.Longitude, grid, product.Resolution, t.reckoner)
	if err != nil {
		return domain.Sweep{}, fmt.Errorf("project record %s: %w", rec.DataTime.UTC().Format(time.RFC3339), err)
	}
	t.metrics.ProjectionDuration.Observe(time.Since(start).Seconds())

	t.logger.Debug("record projected",
		"site", site,
		"radials", grid.Radials,
		"gates", grid.Gates,
		"azimuths", len(grid.Azimuths),
	)

	return domain.NewSweep(site, product, rec, grid, geo), nil
}
