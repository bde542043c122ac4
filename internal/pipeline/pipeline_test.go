package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/storm-radar-etl/internal/domain"
	"github.com/couchcryptid/storm-radar-etl/internal/geodesy"
	"github.com/couchcryptid/storm-radar-etl/internal/observability"
	"github.com/couchcryptid/storm-radar-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

var baseTime = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

type fakeAccess struct {
	mu         sync.Mutex
	times      []time.Time
	records    []domain.RadarRecord
	timesErr   error
	recordsErr error
	requests   []domain.ProductRequest
}

func (f *fakeAccess) AvailableTimes(_ context.Context, _ domain.DataRequest) ([]time.Time, error) {
	return f.times, f.timesErr
}

func (f *fakeAccess) RadarRecords(_ context.Context, req domain.ProductRequest) ([]domain.RadarRecord, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.records, f.recordsErr
}

type recordingLoader struct {
	mu      sync.Mutex
	batches [][]domain.Sweep
	err     error
	notify  chan struct{}
}

func newRecordingLoader() *recordingLoader {
	return &recordingLoader{notify: make(chan struct{}, 16)}
}

func (l *recordingLoader) LoadBatch(_ context.Context, sweeps []domain.Sweep) error {
	if l.err != nil {
		return l.err
	}
	l.mu.Lock()
	l.batches = append(l.batches, sweeps)
	l.mu.Unlock()
	l.notify <- struct{}{}
	return nil
}

func (l *recordingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.batches)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func n0q(t *testing.T) domain.Product {
	t.Helper()
	p, ok := domain.DefaultCatalog().Lookup("N0Q")
	require.True(t, ok)
	return p
}

func makeRecord(dataTime time.Time) domain.RadarRecord {
	return domain.RadarRecord{
		Latitude:  37.155,
		Longitude: -121.898,
		DataTime:  dataTime,
		Payload: []domain.DataRecord{
			{Name: domain.PayloadData, Sizes: []int{2, 3}, ByteData: []int8{0, 20, -5, 40, -1, 10}},
			{Name: domain.PayloadAngles, FloatData: []float32{0.5, 1.5}},
			{Name: domain.PayloadThresholds, ShortData: []int16{-320, 5}},
		},
	}
}

func newPipeline(t *testing.T, access domain.DataAccess, loader pipeline.BatchLoader, logger *slog.Logger, opts ...pipeline.Option) (*pipeline.Pipeline, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	ext := pipeline.NewExtractor(access, n0q(t), logger, metrics)
	tfm := pipeline.NewTransformer(geodesy.WGS84{}, logger, metrics)
	return pipeline.New(ext, tfm, loader, logger, metrics, opts...), metrics
}

// --- RunOnce ---

func TestPipeline_RunOnce_KMUXExample(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	access := &fakeAccess{
		times: []time.Time{baseTime.Add(10 * time.Minute), baseTime, baseTime.Add(5 * time.Minute)},
		records: []domain.RadarRecord{
			makeRecord(baseTime),
			makeRecord(baseTime.Add(5 * time.Minute)),
			makeRecord(baseTime.Add(10 * time.Minute)),
		},
	}
	loader := newRecordingLoader()
	p, metrics := newPipeline(t, access, loader, logger)

	sweeps, err := p.RunOnce(context.Background(), "KMUX")
	require.NoError(t, err)
	require.Len(t, sweeps, 3)

	require.Len(t, access.requests, 1)
	want := domain.ProductRequest{
		Site:        "kmux",
		ProductCode: 94,
		Elevation:   "0.5",
		TimeRange:   domain.TimeRange{Start: baseTime, End: baseTime.Add(10 * time.Minute)},
	}
	if diff := cmp.Diff(want, access.requests[0]); diff != "" {
		t.Fatalf("product request mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, hasLogMessage(t, logs.String(), "found 3 records at kmux"))
	assert.Equal(t, 1, loader.count())
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.RecordsFetched))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.SweepsLoaded))
	require.NoError(t, p.CheckReadiness(context.Background()))

	s := sweeps[0]
	assert.Equal(t, "kmux", s.Site)
	assert.Equal(t, [][]uint8{{0, 20, 251}, {40, 255, 10}}, s.Grid.Pixels)
	assert.Equal(t, []float64{0.5, 1.5, 1.5}, s.Grid.Azimuths)
	assert.Equal(t, []float64{0, 1000, 2000, 3000}, s.Geo.Ranges)
	require.Len(t, s.Geo.Lats, 4)
	require.Len(t, s.Geo.Lats[0], 3)
	assert.Equal(t, 37.155, s.Geo.Lats[0][0])
	assert.Greater(t, s.Geo.Lats[3][0], 37.155, "northward azimuth increases latitude")
	assert.NotEqual(t, s.Geo.Lons[3][0], s.Geo.Lons[3][1], "each azimuth keeps its own column")
}

func TestPipeline_RunOnce_DataUnavailable(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	access := &fakeAccess{times: []time.Time{baseTime, baseTime.Add(time.Hour)}}
	loader := newRecordingLoader()
	p, metrics := newPipeline(t, access, loader, logger)

	_, err := p.RunOnce(context.Background(), "kmux")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)

	var due *domain.DataUnavailableError
	require.True(t, errors.As(err, &due))
	assert.Equal(t, domain.TimeRange{Start: baseTime, End: baseTime.Add(time.Hour)}, due.TimeRange)
	assert.Contains(t, err.Error(), "2024-05-01T12:00:00Z")

	assert.True(t, hasLogMessage(t, logs.String(), "found 0 records at kmux"))
	assert.Equal(t, 0, loader.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DataUnavailable))
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_RunOnce_NoAvailableTimes(t *testing.T) {
	p, _ := newPipeline(t, &fakeAccess{}, newRecordingLoader(), discardLogger())

	_, err := p.RunOnce(context.Background(), "xxxx")
	assert.ErrorIs(t, err, domain.ErrNoAvailableTimes)
}

func TestPipeline_RunOnce_FetchError(t *testing.T) {
	access := &fakeAccess{times: []time.Time{baseTime}, recordsErr: errors.New("connection refused")}
	p, metrics := newPipeline(t, access, newRecordingLoader(), discardLogger())

	_, err := p.RunOnce(context.Background(), "kmux")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch radar records")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FetchErrors))
}

func TestPipeline_RunOnce_SkipsUndecodableRecords(t *testing.T) {
	bad := makeRecord(baseTime)
	bad.Payload = bad.Payload[1:] // no Data item
	noAngles := makeRecord(baseTime.Add(time.Minute))
	noAngles.Payload = noAngles.Payload[:1]

	access := &fakeAccess{
		times:   []time.Time{baseTime},
		records: []domain.RadarRecord{bad, noAngles, makeRecord(baseTime.Add(2 * time.Minute))},
	}
	loader := newRecordingLoader()
	p, metrics := newPipeline(t, access, loader, discardLogger())

	sweeps, err := p.RunOnce(context.Background(), "kmux")
	require.NoError(t, err)
	assert.Len(t, sweeps, 1)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DecodeErrors))
	assert.Equal(t, 1, loader.count())
}

func TestPipeline_RunOnce_LoadError(t *testing.T) {
	access := &fakeAccess{times: []time.Time{baseTime}, records: []domain.RadarRecord{makeRecord(baseTime)}}
	loader := newRecordingLoader()
	loader.err = errors.New("disk full")
	p, _ := newPipeline(t, access, loader, discardLogger())

	_, err := p.RunOnce(context.Background(), "kmux")
	require.Error(t, err)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

// --- Run ---

func TestPipeline_Run_PollsEachInterval(t *testing.T) {
	access := &fakeAccess{times: []time.Time{baseTime}, records: []domain.RadarRecord{makeRecord(baseTime)}}
	loader := newRecordingLoader()
	clock := clockwork.NewFakeClock()
	p, metrics := newPipeline(t, access, loader, discardLogger(), pipeline.WithClock(clock))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx, []string{"kmux", "kdax"}, time.Minute) }()

	waitLoads(ctx, t, loader, 2)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)
	waitLoads(ctx, t, loader, 2)

	cancel()
	require.NoError(t, <-errCh)
	assert.Equal(t, 4, loader.count())
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PipelineRunning))

	access.mu.Lock()
	defer access.mu.Unlock()
	require.Len(t, access.requests, 4)
	assert.Equal(t, "kmux", access.requests[0].Site)
	assert.Equal(t, "kdax", access.requests[1].Site)
}

func TestPipeline_Run_BacksOffAfterFetchError(t *testing.T) {
	access := &fakeAccess{timesErr: errors.New("gateway down")}
	clock := clockwork.NewFakeClock()
	p, metrics := newPipeline(t, access, newRecordingLoader(), discardLogger(), pipeline.WithClock(clock))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx, []string{"kmux"}, time.Minute) }()

	// First failure sleeps 200ms before the poll interval timer.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FetchErrors))
	clock.Advance(200 * time.Millisecond)

	// Then the interval timer.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)

	// Second failure.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.FetchErrors))

	cancel()
	require.NoError(t, <-errCh)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	p, _ := newPipeline(t, &fakeAccess{}, newRecordingLoader(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx, []string{"kmux"}, time.Minute))
}

// --- loaders ---

func TestMultiLoader_StopsAtFirstError(t *testing.T) {
	first := newRecordingLoader()
	failing := newRecordingLoader()
	failing.err = errors.New("nope")
	last := newRecordingLoader()

	err := pipeline.MultiLoader{first, failing, last}.LoadBatch(context.Background(), []domain.Sweep{{ID: "a"}})
	require.Error(t, err)
	assert.Equal(t, 1, first.count())
	assert.Equal(t, 0, last.count())
}

func TestLogLoader(t *testing.T) {
	var logs bytes.Buffer
	l := pipeline.NewLogLoader(slog.New(slog.NewJSONHandler(&logs, nil)))

	require.NoError(t, l.LoadBatch(context.Background(), []domain.Sweep{
		{ID: "kmux-N0Q-1", Site: "kmux", Product: n0q(t), ValidTime: baseTime},
	}))
	assert.Contains(t, logs.String(), `"id":"kmux-N0Q-1"`)
	assert.Contains(t, logs.String(), `"product":"N0Q"`)
}

// --- helpers ---

func waitLoads(ctx context.Context, t *testing.T, l *recordingLoader, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-l.notify:
		case <-ctx.Done():
			t.Fatalf("timed out waiting for load %d of %d", i+1, n)
		}
	}
}

func hasLogMessage(t *testing.T, logs, msg string) bool {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(logs), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry["msg"] == msg {
			return true
		}
	}
	return false
}
