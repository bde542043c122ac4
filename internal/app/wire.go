// Package app assembles the pipeline from configuration for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-radar-etl/internal/adapter/edex"
	kafkaadapter "github.com/couchcryptid/storm-radar-etl/internal/adapter/kafka"
	"github.com/couchcryptid/storm-radar-etl/internal/adapter/projcache"
	"github.com/couchcryptid/storm-radar-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/storm-radar-etl/internal/config"
	"github.com/couchcryptid/storm-radar-etl/internal/domain"
	"github.com/couchcryptid/storm-radar-etl/internal/geodesy"
	"github.com/couchcryptid/storm-radar-etl/internal/observability"
	"github.com/couchcryptid/storm-radar-etl/internal/pipeline"
)

// Components is a wired pipeline plus the resources it owns.
type Components struct {
	Pipeline *pipeline.Pipeline
	Archive  *sqlite.Archive // nil unless ARCHIVE_PATH is set

	closers []func() error
}

// Build wires the data-access client, projection cache and configured sinks.
// The log sink is always first.
func Build(ctx context.Context, cfg *config.Config, catalog domain.Catalog, logger *slog.Logger, metrics *observability.Metrics) (*Components, error) {
	product, ok := catalog.Lookup(cfg.ProductCode)
	if !ok {
		return nil, fmt.Errorf("unknown product %q", cfg.ProductCode)
	}

	client := edex.NewClient(cfg.DataURL, cfg.DataTimeout, logger)
	reckoner, err := projcache.NewCachedReckoner(geodesy.WGS84{}, cfg.ProjectionCacheSize, metrics)
	if err != nil {
		return nil, err
	}

	c := &Components{}
	loaders := pipeline.MultiLoader{pipeline.NewLogLoader(logger)}

	if cfg.ArchiveEnabled() {
		archive, err := sqlite.Open(ctx, cfg.ArchivePath, logger)
		if err != nil {
			return nil, err
		}
		c.Archive = archive
		c.closers = append(c.closers, archive.Close)
		loaders = append(loaders, archive)
		logger.Info("sqlite archive enabled", "path", cfg.ArchivePath)
	}

	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		c.closers = append(c.closers, writer.Close)
		loaders = append(loaders, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	c.Pipeline = pipeline.New(
		pipeline.NewExtractor(client, product, logger, metrics),
		pipeline.NewTransformer(reckoner, logger, metrics),
		loaders,
		logger,
		metrics,
	)
	return c, nil
}

// Close releases every sink in reverse order of creation.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
