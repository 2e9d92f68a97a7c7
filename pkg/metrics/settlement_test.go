package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSettlementMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSettlementMetrics(reg)

	m.IncSettled("cash")
	m.IncSettled("cash")
	m.IncFailed("card", "insufficient_payment")
	m.IncPartial()
	m.ObserveDuration("cash", 150*time.Millisecond)

	if got := testutil.ToFloat64(m.settled.WithLabelValues("cash")); got != 2 {
		t.Errorf("settlements_total{cash} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.failed.WithLabelValues("card", "insufficient_payment")); got != 1 {
		t.Errorf("settlement_failures_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.partial); got != 1 {
		t.Errorf("partial_settlements_total = %v, want 1", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *SettlementMetrics
	m.IncSettled("cash")
	m.IncFailed("", "")
	m.IncPartial()
	m.ObserveDuration("cash", time.Second)

	unregistered := NewSettlementMetrics(nil)
	unregistered.IncSettled("cash")
}
