package handler

import (
	"time"

	"onboard/internal/identity/record"
	"onboard/internal/reconciliation"
	"onboard/pkg/platform/audit"
)

// EvaluationResponse is the HTTP response for POST /v1/evaluations.
type EvaluationResponse struct {
	ID            string             `json:"evaluation_id"`
	ClientID      string             `json:"client_id"`
	Decision      string             `json:"decision"`
	Stage         string             `json:"stage"`
	Reason        string             `json:"reason"`
	Mismatches    []MismatchResponse `json:"mismatches,omitempty"`
	FuzzyFailures []string           `json:"fuzzy_failures,omitempty"`
	Details       []string           `json:"details,omitempty"`
	EvaluatedAt   time.Time          `json:"evaluated_at"`
	DurationMS    int64              `json:"duration_ms"`
}

// MismatchResponse is one conflicting field.
type MismatchResponse struct {
	Source  string `json:"source"`
	Field   string `json:"field"`
	Held    string `json:"held,omitempty"`
	HeldBy  string `json:"held_by,omitempty"`
	Offered string `json:"offered"`
}

// FromEvaluation converts an evaluation to its HTTP response.
func FromEvaluation(ev *reconciliation.Evaluation) *EvaluationResponse {
	res := ev.Result
	out := &EvaluationResponse{
		ID:          ev.ID.String(),
		ClientID:    ev.ClientID,
		Decision:    string(res.Decision),
		Stage:       string(res.Stage),
		Reason:      string(res.Reason),
		Details:     res.Details(),
		EvaluatedAt: ev.EvaluatedAt,
		DurationMS:  ev.Duration.Milliseconds(),
	}
	for _, m := range res.Mismatches {
		out.Mismatches = append(out.Mismatches, MismatchResponse{
			Source:  m.Source,
			Field:   string(m.Field),
			Held:    valueText(m.Held),
			HeldBy:  m.HeldBy,
			Offered: valueText(m.Offered),
		})
	}
	for _, f := range res.FuzzyFailures {
		out.FuzzyFailures = append(out.FuzzyFailures, string(f))
	}
	return out
}

func valueText(v record.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// DecisionResponse is the HTTP response for GET /v1/clients/{clientID}/decision.
type DecisionResponse struct {
	EvaluationID string    `json:"evaluation_id"`
	ClientID     string    `json:"client_id"`
	Decision     string    `json:"decision"`
	Reason       string    `json:"reason"`
	Stage        string    `json:"stage"`
	Details      []string  `json:"details,omitempty"`
	DecidedAt    time.Time `json:"decided_at"`
}

// FromEvent converts a recorded decision event to its HTTP response.
func FromEvent(e audit.Event) *DecisionResponse {
	return &DecisionResponse{
		EvaluationID: e.EvaluationID,
		ClientID:     e.ClientID,
		Decision:     e.Decision,
		Reason:       e.Reason,
		Stage:        e.Stage,
		Details:      e.Details,
		DecidedAt:    e.Timestamp,
	}
}
