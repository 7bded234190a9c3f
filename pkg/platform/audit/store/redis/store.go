// Package redis keeps the latest onboarding decision per client in Redis so
// the API can answer "what did we decide for this client" without scanning
// the audit trail.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
)

const (
	defaultPrefix = "onboard:decision:"
	defaultTTL    = 30 * 24 * time.Hour
)

// DecisionStore is an audit.Store that ignores everything except decision
// events and overwrites the client's entry on each one.
type DecisionStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// Option configures a DecisionStore.
type Option func(*DecisionStore)

// WithTTL sets how long a decision is kept; zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *DecisionStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

func WithKeyPrefix(prefix string) Option {
	return func(s *DecisionStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func New(client redis.Cmdable, opts ...Option) *DecisionStore {
	s := &DecisionStore{client: client, prefix: defaultPrefix, ttl: defaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DecisionStore) key(clientID string) string {
	return s.prefix + clientID
}

// Append stores decision events; other events are accepted and dropped.
func (s *DecisionStore) Append(ctx context.Context, event audit.Event) error {
	if !event.IsDecision() || event.ClientID == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}
	if err := s.client.Set(ctx, s.key(event.ClientID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store decision: %w", err)
	}
	return nil
}

// Latest returns the client's most recent decision or sentinel.ErrNotFound.
func (s *DecisionStore) Latest(ctx context.Context, clientID string) (audit.Event, error) {
	raw, err := s.client.Get(ctx, s.key(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return audit.Event{}, sentinel.ErrNotFound
		}
		return audit.Event{}, fmt.Errorf("load decision: %w", err)
	}
	var event audit.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return audit.Event{}, fmt.Errorf("decode decision: %w", err)
	}
	return event, nil
}
