package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCounters(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.ObserveToolDispatch("get_food_log", true)
	m.ObserveToolDispatch("get_food_log", true)
	m.ObserveToolDispatch("get_food_log", false)
	m.ObserveToolSkipped("create_reminder")
	m.ObserveModelRequest("chat", true, 0.25)
	m.ObserveChainDepth(2)

	if got := testutil.ToFloat64(m.ToolDispatchCounter.WithLabelValues("get_food_log", "success")); got != 2 {
		t.Errorf("success dispatches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ToolDispatchCounter.WithLabelValues("get_food_log", "error")); got != 1 {
		t.Errorf("error dispatches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ToolSkippedCounter.WithLabelValues("create_reminder")); got != 1 {
		t.Errorf("skipped = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ModelRequestCounter.WithLabelValues("chat", "success")); got != 1 {
		t.Errorf("model requests = %v, want 1", got)
	}
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveToolDispatch("x", true)
	m.ObserveToolSkipped("x")
	m.ObserveModelRequest("x", false, 1)
	m.ObserveChainDepth(0)
}
