// Package observability registers the process-wide Prometheus metrics.
// Registration is lazy and idempotent so tests can import any package
// without double-register panics.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	activeSessions  prometheus.Gauge
	sessionsCreated *prometheus.CounterVec
	sessionsEvicted prometheus.Counter

	turnsTotal      *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec

	toolExecutionTotal    *prometheus.CounterVec
	toolExecutionDuration *prometheus.HistogramVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "agora_active_sessions",
				Help: "Number of live agent sessions.",
			}),
			sessionsCreated: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agora_sessions_created_total",
					Help: "Sessions created by tier.",
				},
				[]string{"tier"},
			),
			sessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "agora_sessions_evicted_total",
				Help: "Sessions removed by the idle eviction sweep.",
			}),
			turnsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agora_turns_total",
					Help: "Conversational turns by outcome.",
				},
				[]string{"status"},
			),
			backendDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "agora_backend_duration_seconds",
					Help:    "Reasoning backend call latency by backend kind.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"backend"},
			),
			toolExecutionTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "agora_tool_executions_total",
					Help: "Tool executions by tool and outcome.",
				},
				[]string{"tool", "status"},
			),
			toolExecutionDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "agora_tool_execution_duration_seconds",
					Help:    "Tool execution latency by tool.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"tool"},
			),
		}

		prometheus.MustRegister(
			m.activeSessions,
			m.sessionsCreated,
			m.sessionsEvicted,
			m.turnsTotal,
			m.backendDuration,
			m.toolExecutionTotal,
			m.toolExecutionDuration,
		)

		metricsInst = m
	})
	return metricsInst
}

// EnsureRegistered forces metric registration. Call it from component
// constructors so metrics exist before the first scrape.
func EnsureRegistered() {
	getMetrics()
}

// SetActiveSessions records the current live session count.
func SetActiveSessions(n int) {
	getMetrics().activeSessions.Set(float64(n))
}

// RecordSessionCreated counts a session creation for a tier.
func RecordSessionCreated(tier string) {
	getMetrics().sessionsCreated.WithLabelValues(tier).Inc()
}

// RecordSessionEvicted counts an idle-session eviction.
func RecordSessionEvicted() {
	getMetrics().sessionsEvicted.Inc()
}

// RecordTurn counts a completed turn by outcome status.
func RecordTurn(status string) {
	getMetrics().turnsTotal.WithLabelValues(status).Inc()
}

// RecordBackendCall records a reasoning backend call latency.
func RecordBackendCall(backend string, d time.Duration) {
	getMetrics().backendDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// RecordToolExecution records a tool run with its outcome and latency.
func RecordToolExecution(tool, status string, d time.Duration) {
	m := getMetrics()
	m.toolExecutionTotal.WithLabelValues(tool, status).Inc()
	m.toolExecutionDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}
