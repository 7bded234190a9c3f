package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboard/internal/platform/config"
	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/audit/store/memory"
	"onboard/pkg/platform/sentinel"
)

type brokenReader struct{}

func (brokenReader) Latest(context.Context, string) (audit.Event, error) {
	return audit.Event{}, errors.New("redis: connection pool timeout")
}

func TestCachedDecisions(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	primary := memory.NewInMemoryStore()
	require.NoError(t, primary.Append(ctx, audit.Event{ClientID: "client_1", EvaluationID: "from-primary", Action: string(audit.EventEvaluationAccepted)}))
	cache := memory.NewInMemoryStore()
	require.NoError(t, cache.Append(ctx, audit.Event{ClientID: "client_2", EvaluationID: "from-cache", Action: string(audit.EventEvaluationRejected)}))

	reader := cachedDecisions{cache: cache, primary: primary, log: log}

	got, err := reader.Latest(ctx, "client_2")
	require.NoError(t, err)
	assert.Equal(t, "from-cache", got.EvaluationID)

	got, err = reader.Latest(ctx, "client_1")
	require.NoError(t, err)
	assert.Equal(t, "from-primary", got.EvaluationID, "cache miss falls back")

	_, err = reader.Latest(ctx, "client_3")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	reader.cache = brokenReader{}
	got, err = reader.Latest(ctx, "client_1")
	require.NoError(t, err)
	assert.Equal(t, "from-primary", got.EvaluationID, "cache failure falls back")
}

func TestOpenStores_InMemoryDefault(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := openStores(context.Background(), config.Config{}, log, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.Projector)
	assert.Empty(t, s.Health)

	ctx := context.Background()
	require.NoError(t, s.Audit.Append(ctx, audit.Event{ClientID: "client_1", Action: string(audit.EventEvaluationAccepted)}))
	_, err = s.Decisions.Latest(ctx, "client_1")
	assert.NoError(t, err)
}

// slowRunner keeps working for a moment after cancellation, as a consumer
// finishing its last Handle would.
type slowRunner struct {
	started  chan struct{}
	finished atomic.Bool
}

func (r *slowRunner) Run(ctx context.Context) error {
	close(r.started)
	<-ctx.Done()
	time.Sleep(50 * time.Millisecond)
	r.finished.Store(true)
	return ctx.Err()
}

func TestStartProjectorWaitsForRun(t *testing.T) {
	r := &slowRunner{started: make(chan struct{})}
	wait := startProjector(context.Background(), r, slog.New(slog.DiscardHandler))
	<-r.started

	wait()

	assert.True(t, r.finished.Load(), "wait must return only after Run has returned")
}
