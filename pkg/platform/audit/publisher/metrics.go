package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks audit emission.
type Metrics struct {
	Emitted         *prometheus.CounterVec
	Dropped         prometheus.Counter
	PersistFailures *prometheus.CounterVec
}

// NewMetrics registers the audit metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Emitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_audit_events_emitted_total",
			Help: "Audit events accepted for persistence by category",
		}, []string{"category"}),
		Dropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_audit_events_dropped_total",
			Help: "Non-compliance audit events dropped because the async buffer was full",
		}),
		PersistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_audit_persist_failures_total",
			Help: "Audit events the store refused by category",
		}, []string{"category"}),
	}
}

func (m *Metrics) IncEmitted(category string) {
	if m == nil {
		return
	}
	m.Emitted.WithLabelValues(category).Inc()
}

func (m *Metrics) IncDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) IncPersistFailure(category string) {
	if m == nil {
		return
	}
	m.PersistFailures.WithLabelValues(category).Inc()
}
