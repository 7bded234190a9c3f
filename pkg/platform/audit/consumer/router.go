package consumer

import (
	"context"
	"log/slog"

	"onboard/internal/platform/kafka"
)

// Router dispatches messages to handlers by the record's action header.
type Router struct {
	handlers map[string]kafka.Handler
	fallback kafka.Handler
	logger   *slog.Logger
}

// NewRouter creates an action router with an optional fallback handler.
func NewRouter(logger *slog.Logger, fallback kafka.Handler) *Router {
	return &Router{
		handlers: make(map[string]kafka.Handler),
		fallback: fallback,
		logger:   logger,
	}
}

// Register adds a handler for an action.
func (r *Router) Register(action string, handler kafka.Handler) {
	r.handlers[action] = handler
}

// Handle routes the message to the handler registered for its action.
func (r *Router) Handle(ctx context.Context, msg *kafka.Message) error {
	action := msg.Headers[actionHeader]
	handler, ok := r.handlers[action]
	if !ok {
		if r.fallback != nil {
			return r.fallback.Handle(ctx, msg)
		}
		r.logger.DebugContext(ctx, "no handler for action, skipping message",
			"action", action,
			"key", string(msg.Key),
		)
		return nil // commit to avoid redelivery
	}
	return handler.Handle(ctx, msg)
}
