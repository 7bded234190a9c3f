package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reconciliation module.
type Metrics struct {
	// Stage latencies by stage
	StageLatency *prometheus.HistogramVec

	// Evaluation outcomes by decision and reason
	Outcomes *prometheus.CounterVec

	// Overall evaluation latency, staging included
	EvaluateLatency prometheus.Histogram

	// Checked fields the passport scan did not corroborate
	FuzzyFieldFailures *prometheus.CounterVec

	// Decision events the sink refused
	AuditFailures prometheus.Counter
}

// New creates a new Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the metrics on reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onboard_reconciliation_stage_duration_seconds",
			Help:    "Duration of reconciliation stages by stage",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"stage"}), // stage: "form", "profile", "image"

		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_reconciliation_outcomes_total",
			Help: "Total evaluation outcomes by decision and reason",
		}, []string{"decision", "reason"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboard_reconciliation_evaluate_duration_seconds",
			Help:    "Duration of full evaluation including document staging",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		FuzzyFieldFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_reconciliation_fuzzy_field_failures_total",
			Help: "Checked fields not found in passport OCR text",
		}, []string{"field"}),

		AuditFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_reconciliation_audit_failures_total",
			Help: "Decision audit events that could not be persisted",
		}),
	}
}

// ObserveStageLatency records the duration of one stage.
func (m *Metrics) ObserveStageLatency(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// IncrementOutcome records an evaluation outcome.
func (m *Metrics) IncrementOutcome(decision, reason string) {
	if m != nil {
		m.Outcomes.WithLabelValues(decision, reason).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementFuzzyFailure records a checked field missing from the scan.
func (m *Metrics) IncrementFuzzyFailure(field string) {
	if m != nil {
		m.FuzzyFieldFailures.WithLabelValues(field).Inc()
	}
}

// IncrementAuditFailure records a decision event the sink refused.
func (m *Metrics) IncrementAuditFailure() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}
