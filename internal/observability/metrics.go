// Package observability provides Prometheus metrics for the coach engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the engine's Prometheus metrics: model call volume and
// latency, tool dispatch outcomes, and how deep exchange chains run.
type Metrics struct {
	// ModelRequestCounter counts streaming model calls.
	// Labels: model, status (success|error)
	ModelRequestCounter *prometheus.CounterVec

	// ModelRequestDuration measures model call latency in seconds.
	// Labels: model
	ModelRequestDuration *prometheus.HistogramVec

	// ToolDispatchCounter counts tool dispatches.
	// Labels: tool, status (success|error)
	ToolDispatchCounter *prometheus.CounterVec

	// ToolSkippedCounter counts tool calls skipped by the stop policy.
	// Labels: tool
	ToolSkippedCounter *prometheus.CounterVec

	// ChainDepth observes the final recursion depth of each exchange.
	ChainDepth prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default registry.
// Call once at startup.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates metrics registered with the given registerer.
// Tests pass a fresh registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ModelRequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_model_requests_total",
				Help: "Streaming model calls by model and status.",
			},
			[]string{"model", "status"},
		),
		ModelRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coach_model_request_duration_seconds",
				Help:    "Model call latency in seconds.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"model"},
		),
		ToolDispatchCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_tool_dispatches_total",
				Help: "Tool dispatches by tool name and status.",
			},
			[]string{"tool", "status"},
		),
		ToolSkippedCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_tool_skipped_total",
				Help: "Tool calls skipped by the stop policy.",
			},
			[]string{"tool"},
		),
		ChainDepth: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coach_chain_depth",
				Help:    "Final recursion depth reached per exchange.",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),
	}
}

// ObserveToolDispatch records one tool dispatch. Nil-safe.
func (m *Metrics) ObserveToolDispatch(tool string, ok bool) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "error"
	}
	m.ToolDispatchCounter.WithLabelValues(tool, status).Inc()
}

// ObserveToolSkipped records one skipped tool call. Nil-safe.
func (m *Metrics) ObserveToolSkipped(tool string) {
	if m == nil {
		return
	}
	m.ToolSkippedCounter.WithLabelValues(tool).Inc()
}

// ObserveModelRequest records one model call. Nil-safe.
func (m *Metrics) ObserveModelRequest(model string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "error"
	}
	m.ModelRequestCounter.WithLabelValues(model, status).Inc()
	m.ModelRequestDuration.WithLabelValues(model).Observe(seconds)
}

// ObserveChainDepth records the final depth of one exchange. Nil-safe.
func (m *Metrics) ObserveChainDepth(depth int) {
	if m == nil {
		return
	}
	m.ChainDepth.Observe(float64(depth))
}
