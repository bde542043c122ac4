package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/storm-radar-etl/internal/domain"
	"github.com/couchcryptid/storm-radar-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Extractor fetches the radar records available for a site.
type Extractor interface {
	Extract(ctx context.Context, site string) (Batch, error)
}

// Transformer converts one radar record into a projected sweep.
type Transformer interface {
	Transform(ctx context.Context, site string, product domain.Product, rec domain.RadarRecord) (domain.Sweep, error)
}

// BatchLoader writes sweeps to a destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, sweeps []domain.Sweep) error
}

// Pipeline orchestrates the request-fetch-decode-project flow.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	ready       atomic.Bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used for poll intervals and backoff.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once at least one sweep has been loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any sweeps yet")
	}
	return nil
}

// RunOnce fetches, decodes and projects every record for a site, then hands
// the resulting sweeps to the loader. Records that fail to decode or project
// are logged and skipped. Fetch failures, including data unavailability, are
// returned to the caller.
func (p *Pipeline) RunOnce(ctx context.Context, site string) ([]domain.Sweep, error) {
	batch, err := p.extractor.Extract(ctx, site)
	if err != nil {
		return nil, err
	}

	sweeps := make([]domain.Sweep, 0, len(batch.Records))
	for _, rec := range batch.Records {
		sweep, err := p.transformer.Transform(ctx, batch.Site, batch.Product, rec)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("transform failed, skipping record",
				"error", err,
				"site", batch.Site,
				"data_time", rec.DataTime,
			)
			p.metrics.DecodeErrors.Inc()
			continue
		}
		sweeps = append(sweeps, sweep)
	}

	if len(sweeps) == 0 {
		return sweeps, nil
	}

	if err := p.loader.LoadBatch(ctx, sweeps); err != nil {
		return nil, err
	}
	p.metrics.SweepsLoaded.Add(float64(len(sweeps)))
	p.ready.Store(true)

	return sweeps, nil
}

// Run polls every site once per interval until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context, sites []string, interval time.Duration) error {
	p.logger.Info("pipeline started", "sites", sites, "interval", interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff after fetch or load failures: start at 200ms,
	// double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		for _, site := range sites {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			if !p.pollSite(ctx, site, &backoff, maxBackoff) {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
		}

		if !p.sleep(ctx, interval) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// pollSite runs one cycle for a site. Returns false if the pipeline should stop.
func (p *Pipeline) pollSite(ctx context.Context, site string, backoff *time.Duration, maxBackoff time.Duration) bool {
	sweeps, err := p.RunOnce(ctx, site)
	switch {
	case err == nil:
		*backoff = 200 * time.Millisecond
		p.logger.Info("site processed", "site", site, "sweeps", len(sweeps))
		return true
	case ctx.Err() != nil:
		return false
	case errors.Is(err, domain.ErrDataUnavailable), errors.Is(err, domain.ErrNoAvailableTimes):
		p.logger.Warn("no radar data", "site", site, "error", err)
		return true
	default:
		p.logger.Error("site poll failed", "site", site, "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !p.sleep(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

// sleep mirrors retry.SleepWithContext on the pipeline clock.
func (p *Pipeline) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
