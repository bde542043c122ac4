//go:build edex

package edex

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/storm-radar-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit a live data-access gateway named by RADAR_DATA_URL.
// Run with: go test -tags=edex ./internal/adapter/edex/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	url := os.Getenv("RADAR_DATA_URL")
	if url == "" {
		t.Fatal("RADAR_DATA_URL must be set to run smoke tests")
	}
	return NewClient(url, 30*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_KMUXReflectivity(t *testing.T) {
	c := smokeClient(t)
	ctx := context.Background()

	times, err := c.AvailableTimes(ctx, domain.NewDataRequest("kmux"))
	require.NoError(t, err)
	require.NotEmpty(t, times, "kmux should list available times")

	tr, err := domain.NewTimeRange(times)
	require.NoError(t, err)
	product, _ := domain.DefaultCatalog().Lookup("N0Q")

	records, err := c.RadarRecords(ctx, domain.NewProductRequest("kmux", product, tr))
	require.NoError(t, err)
	require.NotEmpty(t, records)

	grid, err := domain.DecodeRecord(records[0])
	require.NoError(t, err)
	assert.Positive(t, grid.Radials)
	assert.Positive(t, grid.Gates)
	assert.Len(t, grid.Azimuths, grid.Radials+1)
	assert.InDelta(t, 37.155, records[0].Latitude, 0.1, "lat should be near the KMUX radar")
}
