package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics records counters for the settlement pipeline.
type SettlementMetrics struct {
	duration *prometheus.HistogramVec
	settled  *prometheus.CounterVec
	failed   *prometheus.CounterVec
	partial  prometheus.Counter
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "settlement_duration_seconds",
		Help:    "Duration of settlement commits in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlements_total",
		Help: "Completed settlements.",
	}, []string{"method"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_failures_total",
		Help: "Settlement attempts that did not commit.",
	}, []string{"method", "reason"})
	partial := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "partial_settlements_total",
		Help: "Settlements that left a remaining balance.",
	})
	reg.MustRegister(duration, settled, failed, partial)
	return &SettlementMetrics{
		duration: duration,
		settled:  settled,
		failed:   failed,
		partial:  partial,
	}
}

// ObserveDuration records how long a settlement commit took.
func (s *SettlementMetrics) ObserveDuration(method string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncSettled increments the settled counter for the payment method.
func (s *SettlementMetrics) IncSettled(method string) {
	if s == nil || s.settled == nil {
		return
	}
	s.settled.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncFailed increments the failure counter for the payment method.
func (s *SettlementMetrics) IncFailed(method, reason string) {
	if s == nil || s.failed == nil {
		return
	}
	s.failed.WithLabelValues(normalizeLabel(method), normalizeLabel(reason)).Inc()
}

// IncPartial counts a settlement that left a balance behind.
func (s *SettlementMetrics) IncPartial() {
	if s == nil || s.partial == nil {
		return
	}
	s.partial.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
