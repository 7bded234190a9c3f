package audit

import (
	"context"
	"errors"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers onboarding decisions. These gate account
	// opening and need durable storage.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers rejected operator credentials.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity such as batch runs.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the evaluation flow to capture decisions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category     EventCategory `json:"category"`
	Timestamp    time.Time     `json:"timestamp"`
	EvaluationID string        `json:"evaluation_id,omitempty"`
	ClientID     string        `json:"client_id,omitempty"`
	Action       string        `json:"action"`
	Decision     string        `json:"decision,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	Stage        string        `json:"stage,omitempty"`
	// Details carries human-readable mismatch and fuzzy failure lines.
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
	// ActorID is the operator subject from the bearer token, when present.
	ActorID string `json:"actor_id,omitempty"`
}

// IsDecision reports whether the event records an onboarding decision.
func (e Event) IsDecision() bool {
	a := AuditEvent(e.Action)
	return a == EventEvaluationAccepted || a == EventEvaluationRejected
}

type AuditEvent string

const (
	// Decision events
	EventEvaluationAccepted AuditEvent = "evaluation_accepted"
	EventEvaluationRejected AuditEvent = "evaluation_rejected"

	// Batch events
	EventBatchCompleted AuditEvent = "batch_completed"

	// Auth events
	EventAuthFailed AuditEvent = "auth_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventEvaluationAccepted: CategoryCompliance,
	EventEvaluationRejected: CategoryCompliance,
	EventAuthFailed:         CategorySecurity,
	EventBatchCompleted:     CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Lister is implemented by stores that can read events back.
type Lister interface {
	ListByClient(ctx context.Context, clientID string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// ErrListUnsupported is returned when reading from a write-only store.
var ErrListUnsupported = errors.New("audit store does not support listing")
