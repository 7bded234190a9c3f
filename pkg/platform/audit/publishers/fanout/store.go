// Package fanout writes audit events to a primary store and any number of
// best-effort secondary sinks.
//
// The primary is the record of truth: its error is returned and the caller
// must treat the decision as unrecorded. Secondaries (the Redis decision
// cache, the Kafka topic) are each guarded by a circuit breaker; their
// failures are logged and counted but never fail the write.
package fanout

import (
	"context"
	"log/slog"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/circuit"
	"onboard/pkg/platform/sentinel"
)

type secondary struct {
	store   audit.Store
	breaker *circuit.Breaker
}

// Store implements audit.Store and, when the primary does, audit.Lister.
type Store struct {
	primary     audit.Store
	secondaries []secondary
	logger      *slog.Logger
	metrics     *Metrics
}

type Option func(*Store)

// WithSecondary adds a best-effort sink named name.
func WithSecondary(name string, store audit.Store, opts ...circuit.Option) Option {
	return func(s *Store) {
		s.secondaries = append(s.secondaries, secondary{
			store:   store,
			breaker: circuit.New(name, opts...),
		})
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

func New(primary audit.Store, opts ...Option) *Store {
	s := &Store{primary: primary}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Append writes to the primary first. Secondaries are only attempted once
// the primary has accepted the event.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if err := s.primary.Append(ctx, event); err != nil {
		return err
	}
	for _, sec := range s.secondaries {
		s.appendSecondary(ctx, sec, event)
	}
	return nil
}

func (s *Store) appendSecondary(ctx context.Context, sec secondary, event audit.Event) {
	name := sec.breaker.Name()
	if !sec.breaker.Allow() {
		s.metrics.incSkipped(name)
		return
	}
	if err := sec.store.Append(ctx, event); err != nil {
		s.metrics.incFailure(name)
		_, change := sec.breaker.RecordFailure()
		s.logger.WarnContext(ctx, "secondary audit sink failed",
			"sink", name,
			"action", event.Action,
			"evaluation_id", event.EvaluationID,
			"error", err,
		)
		if change.Opened {
			s.metrics.setOpen(name, true)
			s.logger.ErrorContext(ctx, "secondary audit sink circuit opened", "sink", name)
		}
		return
	}
	if _, change := sec.breaker.RecordSuccess(); change.Closed {
		s.metrics.setOpen(name, false)
		s.logger.InfoContext(ctx, "secondary audit sink circuit closed", "sink", name)
	}
}

// ListByClient reads from the primary.
func (s *Store) ListByClient(ctx context.Context, clientID string) ([]audit.Event, error) {
	lister, ok := s.primary.(audit.Lister)
	if !ok {
		return nil, audit.ErrListUnsupported
	}
	return lister.ListByClient(ctx, clientID)
}

// ListRecent reads from the primary.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	lister, ok := s.primary.(audit.Lister)
	if !ok {
		return nil, audit.ErrListUnsupported
	}
	return lister.ListRecent(ctx, limit)
}

type latestReader interface {
	Latest(ctx context.Context, clientID string) (audit.Event, error)
}

// Latest returns the client's most recent decision from the primary.
func (s *Store) Latest(ctx context.Context, clientID string) (audit.Event, error) {
	r, ok := s.primary.(latestReader)
	if !ok {
		return audit.Event{}, sentinel.ErrNotFound
	}
	return r.Latest(ctx, clientID)
}
