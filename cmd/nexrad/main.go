// Command nexrad fetches every available record of the configured product for
// one radar site, decodes and projects them, and logs a summary per sweep.
//
// Usage:
//
//	nexrad <site>
//
// Configuration comes from the same environment variables as radar-etl.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-radar-etl/internal/app"
	"github.com/couchcryptid/storm-radar-etl/internal/config"
	"github.com/couchcryptid/storm-radar-etl/internal/domain"
	"github.com/couchcryptid/storm-radar-etl/internal/observability"
)

func main() {
	if len(os.Args) != 2 || domain.NormalizeSite(os.Args[1]) == "" {
		fmt.Fprintln(os.Stderr, "usage: nexrad <site>")
		os.Exit(2)
	}
	if err := run(os.Args[1]); err != nil {
		slog.Error("nexrad failed", "error", err)
		os.Exit(1)
	}
}

func run(site string) error {
	catalog := domain.DefaultCatalog()
	cfg, err := config.Load(catalog)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.Build(ctx, cfg, catalog, logger, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}()

	sweeps, err := c.Pipeline.RunOnce(ctx, site)
	if err != nil {
		return err
	}
	logger.Info("done", "site", domain.NormalizeSite(site), "product", cfg.ProductCode, "sweeps", len(sweeps))
	return nil
}
