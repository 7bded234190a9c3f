// Package publisher emits audit events to a store.
//
// Compliance events (onboarding decisions) are always written synchronously
// and a store failure is returned to the caller, who must not act on a
// decision that was not recorded. Other categories go through an optional
// async buffer and are dropped, with a metric, when it is full.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/audit/worker"
	"onboard/pkg/requestcontext"
)

// ErrBufferFull is returned when an async event cannot be queued.
var ErrBufferFull = errors.New("audit buffer full")

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("audit publisher closed")

// Publisher captures structured audit events.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	buffer  int

	mu     sync.RWMutex
	closed bool
	inbox  chan audit.Event
	done   chan struct{}
	once   sync.Once
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer queues non-compliance events in a buffer of n drained by a
// background worker.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.buffer = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.buffer > 0 {
		p.inbox = make(chan audit.Event, p.buffer)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.inbox,
			worker.WithLogger(p.logger),
			worker.WithErrorHandler(func(e audit.Event, _ error) {
				p.metrics.IncPersistFailure(string(e.Category))
			}),
		)
		go func() {
			defer close(p.done)
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit records an event. A zero timestamp is filled from the request time
// and a missing category is derived from the action.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	if p.inbox == nil || event.Category == audit.CategoryCompliance {
		if err := p.store.Append(ctx, event); err != nil {
			p.metrics.IncPersistFailure(string(event.Category))
			return err
		}
		p.metrics.IncEmitted(string(event.Category))
		return nil
	}

	select {
	case p.inbox <- event:
		p.metrics.IncEmitted(string(event.Category))
		return nil
	default:
		p.metrics.IncDropped()
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"category", event.Category,
		)
		return ErrBufferFull
	}
}

// List returns a client's events when the store can read them back.
func (p *Publisher) List(ctx context.Context, clientID string) ([]audit.Event, error) {
	lister, ok := p.store.(audit.Lister)
	if !ok {
		return nil, audit.ErrListUnsupported
	}
	return lister.ListByClient(ctx, clientID)
}

// Close stops accepting events and waits for queued ones to be written.
func (p *Publisher) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		if p.inbox != nil {
			close(p.inbox)
		}
		p.mu.Unlock()
		if p.done != nil {
			<-p.done
		}
	})
}
