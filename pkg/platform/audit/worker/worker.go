package worker

import (
	"context"
	"log/slog"

	audit "onboard/pkg/platform/audit"
)

// Worker drains an event channel into a store. A failed append is reported
// and the worker moves on to the next event.
type Worker struct {
	store   audit.Store
	inbox   <-chan audit.Event
	logger  *slog.Logger
	onError func(audit.Event, error)
}

// Option configures a Worker.
type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithErrorHandler is called for every event the store refuses.
func WithErrorHandler(fn func(audit.Event, error)) Option {
	return func(w *Worker) {
		w.onError = fn
	}
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, opts ...Option) *Worker {
	w := &Worker{store: store, inbox: inbox}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	return w
}

// Run persists events until the inbox is closed, returning nil, or ctx is
// cancelled, returning ctx.Err(). Events still buffered at cancellation are
// not written.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to persist audit event",
					"action", event.Action,
					"client_id", event.ClientID,
					"error", err,
				)
				if w.onError != nil {
					w.onError(event, err)
				}
			}
		}
	}
}
