package app

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/storm-radar-etl/internal/config"
	"github.com/couchcryptid/storm-radar-etl/internal/domain"
	"github.com/couchcryptid/storm-radar-etl/internal/mock"
	"github.com/couchcryptid/storm-radar-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_RunOnceIntoArchive(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	gw := httptest.NewServer(mock.NewGateway(logger, mock.SyntheticFixture("kmux", 37.155, -121.898, start, 3, 6, 4)))
	t.Cleanup(gw.Close)

	cfg := &config.Config{
		DataURL:             gw.URL,
		DataTimeout:         5 * time.Second,
		ProductCode:         "N0Q",
		ArchivePath:         filepath.Join(t.TempDir(), "sweeps.db"),
		ProjectionCacheSize: 64,
	}
	ctx := context.Background()

	c, err := Build(ctx, cfg, domain.DefaultCatalog(), logger, observability.NewMetricsForTesting())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NotNil(t, c.Archive)

	sweeps, err := c.Pipeline.RunOnce(ctx, "kmux")
	require.NoError(t, err)
	assert.Len(t, sweeps, 3)

	n, err := c.Archive.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBuild_UnknownProduct(t *testing.T) {
	_, err := Build(context.Background(), &config.Config{ProductCode: "XYZ"}, domain.DefaultCatalog(),
		slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	assert.Error(t, err)
}

func TestBuild_NoOptionalSinks(t *testing.T) {
	c, err := Build(context.Background(), &config.Config{ProductCode: "N0U", ProjectionCacheSize: 1}, domain.DefaultCatalog(),
		slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	require.NoError(t, err)
	assert.Nil(t, c.Archive)
	assert.NoError(t, c.Close())
}
