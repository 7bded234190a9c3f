package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "onboard/pkg/platform/audit"
	"onboard/pkg/platform/audit/store/memory"
	"onboard/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("audit store unavailable") }

// blockingStore holds every Append until release is closed.
type blockingStore struct {
	release chan struct{}
	inner   *memory.InMemoryStore
}

func (s *blockingStore) Append(ctx context.Context, e audit.Event) error {
	<-s.release
	return s.inner.Append(ctx, e)
}

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		ClientID: "client_1",
		Action:   string(audit.EventEvaluationAccepted),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "client_1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventEvaluationAccepted), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category, "category derived from action")
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	err := pub.Emit(context.Background(), audit.Event{
		ClientID: "client_1",
		Action:   string(audit.EventAuthFailed),
	})
	require.NoError(t, err)
	pub.Close()

	events, err := pub.List(context.Background(), "client_1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventBatchCompleted)})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_ComplianceIsSynchronousInAsyncMode(t *testing.T) {
	pub := NewPublisher(failingStore{}, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		ClientID: "client_1",
		Action:   string(audit.EventEvaluationRejected),
	})
	require.Error(t, err, "decision events must surface store failures")

	err = pub.Emit(context.Background(), audit.Event{Action: string(audit.EventBatchCompleted)})
	assert.NoError(t, err, "operations events are queued")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := &blockingStore{release: make(chan struct{}), inner: memory.NewInMemoryStore()}
	metrics := NewMetrics(prometheus.NewRegistry())
	pub := NewPublisher(store, WithAsyncBuffer(1), WithMetrics(metrics))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		dropped int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventBatchCompleted)}); errors.Is(err, ErrBufferFull) {
				mu.Lock()
				dropped++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	close(store.release)
	pub.Close()

	assert.GreaterOrEqual(t, dropped, 8, "worker holds one event and the buffer one more")
	assert.Equal(t, float64(dropped), testutil.ToFloat64(metrics.Dropped))
}

func TestPublisher_SetsTimestampFromRequestTime(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	at := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)

	require.NoError(t, pub.Emit(ctx, audit.Event{ClientID: "client_1", Action: string(audit.EventEvaluationAccepted)}))

	events, err := pub.List(ctx, "client_1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, at, events[0].Timestamp)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	err := pub.Emit(context.Background(), audit.Event{
		ClientID:  "client_1",
		Action:    string(audit.EventEvaluationAccepted),
		Timestamp: customTime,
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "client_1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventBatchCompleted)})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestPublisher_ListUnsupported(t *testing.T) {
	pub := NewPublisher(failingStore{})
	defer pub.Close()

	_, err := pub.List(context.Background(), "client_1")
	assert.ErrorIs(t, err, audit.ErrListUnsupported)
}

func TestPublisher_DifferentClients(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	require.NoError(t, pub.Emit(context.Background(), audit.Event{ClientID: "client_1", Action: string(audit.EventEvaluationAccepted)}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{ClientID: "client_2", Action: string(audit.EventEvaluationRejected)}))

	events1, err := pub.List(context.Background(), "client_1")
	require.NoError(t, err)
	require.Len(t, events1, 1)
	assert.Equal(t, string(audit.EventEvaluationAccepted), events1[0].Action)

	events2, err := pub.List(context.Background(), "client_2")
	require.NoError(t, err)
	require.Len(t, events2, 1)
	assert.Equal(t, string(audit.EventEvaluationRejected), events2[0].Action)
}
