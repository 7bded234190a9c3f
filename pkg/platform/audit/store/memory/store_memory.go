package memory

import (
	"context"
	"sort"
	"sync"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
)

// InMemoryStore keeps events in process. Events without a client ID (batch
// and auth events) are only visible through ListRecent.
type InMemoryStore struct {
	mu       sync.RWMutex
	byClient map[string][]audit.Event
	all      []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byClient: make(map[string][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byClient = make(map[string][]audit.Event)
	s.all = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ClientID != "" {
		s.byClient[event.ClientID] = append(s.byClient[event.ClientID], event)
	}
	s.all = append(s.all, event)
	return nil
}

// ListByClient returns a client's events in the order they were appended.
func (s *InMemoryStore) ListByClient(_ context.Context, clientID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.byClient[clientID]...), nil
}

// ListRecent returns up to limit events, newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	events := append([]audit.Event{}, s.all...)
	s.mu.RUnlock()

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Latest returns the client's most recent decision event.
func (s *InMemoryStore) Latest(_ context.Context, clientID string) (audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.byClient[clientID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].IsDecision() {
			return events[i], nil
		}
	}
	return audit.Event{}, sentinel.ErrNotFound
}
