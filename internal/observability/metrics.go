package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "radar_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the radar pipeline.
type Metrics struct {
	RecordsFetched  prometheus.Counter
	FetchErrors     prometheus.Counter
	DataUnavailable prometheus.Counter
	DecodeErrors    prometheus.Counter
	SweepsLoaded    prometheus.Counter
	PipelineRunning prometheus.Gauge

	FetchDuration      prometheus.Histogram
	ProjectionDuration prometheus.Histogram

	ProjectionCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsFetched,
		m.FetchErrors,
		m.DataUnavailable,
		m.DecodeErrors,
		m.SweepsLoaded,
		m.PipelineRunning,
		m.FetchDuration,
		m.ProjectionDuration,
		m.ProjectionCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "Total radar records returned by the data service.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Total failed catalog or record requests.",
		}),
		DataUnavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_unavailable_total",
			Help:      "Total product requests that returned no records.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total records skipped because decoding or projection failed.",
		}),
		SweepsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_loaded_total",
			Help:      "Total projected sweeps written to the sinks.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the polling pipeline is active, 0 when shut down.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a catalog plus record fetch for one site.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ProjectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "projection_duration_seconds",
			Help:      "Duration of the geodesic projection of one record.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ProjectionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projection_cache_total",
			Help:      "Projection row cache lookups by result.",
		}, []string{"result"}),
	}
}
