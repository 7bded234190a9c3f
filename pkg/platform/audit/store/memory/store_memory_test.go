package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/sentinel"
)

func decision(clientID, decision string, at time.Time) audit.Event {
	action := audit.EventEvaluationAccepted
	if decision == "reject" {
		action = audit.EventEvaluationRejected
	}
	return audit.Event{
		Category:  action.Category(),
		Timestamp: at,
		ClientID:  clientID,
		Action:    string(action),
		Decision:  decision,
	}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	store := NewInMemoryStore()
	require.NoError(t, store.Append(ctx, decision("client_1", "reject", base)))
	require.NoError(t, store.Append(ctx, decision("client_2", "accept", base.Add(time.Minute))))
	require.NoError(t, store.Append(ctx, audit.Event{Action: string(audit.EventBatchCompleted), Timestamp: base.Add(2 * time.Minute)}))
	require.NoError(t, store.Append(ctx, decision("client_1", "accept", base.Add(3*time.Minute))))

	t.Run("list by client keeps append order", func(t *testing.T) {
		events, err := store.ListByClient(ctx, "client_1")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "reject", events[0].Decision)
		assert.Equal(t, "accept", events[1].Decision)
	})

	t.Run("list recent is newest first and includes clientless events", func(t *testing.T) {
		events, err := store.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "client_1", events[0].ClientID)
		assert.Equal(t, string(audit.EventBatchCompleted), events[1].Action)
	})

	t.Run("latest decision", func(t *testing.T) {
		e, err := store.Latest(ctx, "client_1")
		require.NoError(t, err)
		assert.Equal(t, "accept", e.Decision)

		_, err = store.Latest(ctx, "client_404")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("clear", func(t *testing.T) {
		store.Clear()
		events, err := store.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
