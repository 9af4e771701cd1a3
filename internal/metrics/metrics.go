package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds the counters for one scan run. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	LogsFetched    prometheus.Counter
	EventsDecoded  prometheus.Counter
	DecodeFailures prometheus.Counter
	TokenCalls     *prometheus.CounterVec
	TokensCached   prometheus.Gauge
	RecordsWritten prometheus.Counter
	Progress       prometheus.Gauge
	FetchLatency   prometheus.Histogram

	server *http.Server
}

// New creates the run metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LogsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poolscan_logs_fetched_total",
			Help: "Raw log entries returned by the log source",
		}),
		EventsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poolscan_events_decoded_total",
			Help: "Log entries decoded into PoolCreated events",
		}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poolscan_decode_failures_total",
			Help: "Log entries skipped because they did not match the event schema",
		}),
		TokenCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poolscan_token_calls_total",
			Help: "Token metadata calls by method and result",
		}, []string{"method", "result"}),
		TokensCached: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "poolscan_tokens_cached",
			Help: "Distinct tokens resolved so far",
		}),
		RecordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poolscan_records_written_total",
			Help: "Pool records written to the output sink",
		}),
		Progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "poolscan_progress_ratio",
			Help: "Fraction of fetched log entries processed",
		}),
		FetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "poolscan_log_fetch_seconds",
			Help:    "Time spent fetching logs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3min
		}),
	}

	m.registry.MustRegister(
		m.LogsFetched,
		m.EventsDecoded,
		m.DecodeFailures,
		m.TokenCalls,
		m.TokensCached,
		m.RecordsWritten,
		m.Progress,
		m.FetchLatency,
	)
	return m
}

// StartServer exposes /metrics on addr until Shutdown.
func (m *Metrics) StartServer(addr string, logger *zap.Logger) {
	if m == nil || addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	m.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server start", zap.String("addr", addr))
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
}

// Shutdown stops the metrics server if one was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

func (m *Metrics) RecordLogsFetched(n int, took time.Duration) {
	if m == nil {
		return
	}
	m.LogsFetched.Add(float64(n))
	m.FetchLatency.Observe(took.Seconds())
}

// RecordLogsLoaded counts logs read from a file; no fetch latency is observed.
func (m *Metrics) RecordLogsLoaded(n int) {
	if m == nil {
		return
	}
	m.LogsFetched.Add(float64(n))
}

func (m *Metrics) RecordDecoded() {
	if m == nil {
		return
	}
	m.EventsDecoded.Inc()
}

func (m *Metrics) RecordDecodeFailure() {
	if m == nil {
		return
	}
	m.DecodeFailures.Inc()
}

// RecordTokenCall counts one name/symbol call.
func (m *Metrics) RecordTokenCall(method string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "defaulted"
	}
	m.TokenCalls.WithLabelValues(method, result).Inc()
}

func (m *Metrics) SetTokensCached(n int) {
	if m == nil {
		return
	}
	m.TokensCached.Set(float64(n))
}

func (m *Metrics) RecordWritten() {
	if m == nil {
		return
	}
	m.RecordsWritten.Inc()
}

func (m *Metrics) SetProgress(ratio float64) {
	if m == nil {
		return
	}
	m.Progress.Set(ratio)
}
