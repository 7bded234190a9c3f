package fanout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks secondary sink health.
type Metrics struct {
	SecondaryFailures *prometheus.CounterVec
	SecondarySkipped  *prometheus.CounterVec
	BreakerOpen       *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SecondaryFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_audit_secondary_failures_total",
			Help: "Audit events a secondary sink failed to write",
		}, []string{"sink"}),
		SecondarySkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_audit_secondary_skipped_total",
			Help: "Audit events not sent to a secondary sink because its breaker was open",
		}, []string{"sink"}),
		BreakerOpen: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "onboard_audit_secondary_breaker_open",
			Help: "1 while the secondary sink breaker is open",
		}, []string{"sink"}),
	}
}

func (m *Metrics) incFailure(sink string) {
	if m == nil {
		return
	}
	m.SecondaryFailures.WithLabelValues(sink).Inc()
}

func (m *Metrics) incSkipped(sink string) {
	if m == nil {
		return
	}
	m.SecondarySkipped.WithLabelValues(sink).Inc()
}

func (m *Metrics) setOpen(sink string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerOpen.WithLabelValues(sink).Set(v)
}
