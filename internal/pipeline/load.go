package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-radar-etl/internal/domain"
)

// LogLoader writes one summary line per sweep.
type LogLoader struct {
	logger *slog.Logger
}

// NewLogLoader creates a LogLoader.
func NewLogLoader(logger *slog.Logger) *LogLoader {
	return &LogLoader{logger: logger}
}

func (l *LogLoader) LoadBatch(_ context.Context, sweeps []domain.Sweep) error {
	for i := range sweeps {
		s := &sweeps[i]
		l.logger.Info("sweep projected",
			"id", s.ID,
			"site", s.Site,
			"product", s.Product.Code,
			"valid_time", s.ValidTime.UTC().Format(time.RFC3339),
			"radials", s.Grid.Radials,
			"gates", s.Grid.Gates,
			"min_lat", s.Bounds.MinLat,
			"max_lat", s.Bounds.MaxLat,
			"min_lon", s.Bounds.MinLon,
			"max_lon", s.Bounds.MaxLon,
		)
	}
	return nil
}

// MultiLoader fans a batch out to every loader in order, stopping at the
// first failure.
type MultiLoader []BatchLoader

func (m MultiLoader) LoadBatch(ctx context.Context, sweeps []domain.Sweep) error {
	for _, l := range m {
		if err := l.LoadBatch(ctx, sweeps); err != nil {
			return err
		}
	}
	return nil
}
