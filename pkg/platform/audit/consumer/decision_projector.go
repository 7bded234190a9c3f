package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"onboard/internal/platform/kafka"
	audit "onboard/pkg/platform/audit"
	kafkapub "onboard/pkg/platform/audit/publishers/kafka"
)

const actionHeader = kafkapub.HeaderAction

// DecisionProjector applies decision events from the topic to a read store,
// typically the Redis latest-decision cache, so API replicas that did not
// make a decision can still serve it.
type DecisionProjector struct {
	store  audit.Store
	logger *slog.Logger
}

func NewDecisionProjector(store audit.Store, logger *slog.Logger) *DecisionProjector {
	return &DecisionProjector{store: store, logger: logger}
}

// Handle decodes and stores one decision. Malformed messages are logged and
// committed; store failures are returned for retry.
func (p *DecisionProjector) Handle(ctx context.Context, msg *kafka.Message) error {
	var event audit.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		p.logger.ErrorContext(ctx, "failed to decode decision event",
			"key", string(msg.Key),
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}
	if !event.IsDecision() || event.ClientID == "" {
		p.logger.WarnContext(ctx, "ignoring event without client decision",
			"action", event.Action,
			"offset", msg.Offset,
		)
		return nil
	}
	if err := p.store.Append(ctx, event); err != nil {
		return fmt.Errorf("project decision: %w", err)
	}
	p.logger.DebugContext(ctx, "projected decision",
		"client_id", event.ClientID,
		"evaluation_id", event.EvaluationID,
		"decision", event.Decision,
	)
	return nil
}

// Register wires the projector for both decision actions.
func (p *DecisionProjector) Register(r *Router) {
	r.Register(string(audit.EventEvaluationAccepted), p)
	r.Register(string(audit.EventEvaluationRejected), p)
}
