package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/treeofhope/backend/internal/domain/shared"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	mu         sync.Mutex
	handled    []shared.DomainEvent
	err        error
	panicMsg   string
	ctxErrs    []error
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	h.handled = append(h.handled, event)
	h.ctxErrs = append(h.ctxErrs, ctx.Err())
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_SyncPublish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	typed := newTestHandler("LeafAdded")
	other := newTestHandler("CampaignCreated")
	wildcard := newTestHandler()
	bus.Subscribe(typed)
	bus.Subscribe(other)
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeafAdded"), newTestEvent("LeafAdded")))

	assert.Equal(t, 2, typed.count())
	assert.Equal(t, 0, other.count())
	assert.Equal(t, 2, wildcard.count())
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := newTestHandler("LeafAdded")
	failing.err = errors.New("db down")
	panicking := newTestHandler("LeafAdded")
	panicking.panicMsg = "boom"
	healthy := newTestHandler("LeafAdded")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("LeafAdded")))
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, healthy.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("LeafAdded")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeafAdded")))
	assert.Equal(t, 0, h.count())
}

func TestInMemoryEventBus_AsyncDrainsOnStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsync(2, 16))
	h := newTestHandler("LeafAdded")
	bus.Subscribe(h)
	require.NoError(t, bus.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(ctx, newTestEvent("LeafAdded")))
	}
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, bus.Stop(stopCtx))

	assert.Equal(t, 10, h.count())
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, err := range h.ctxErrs {
		assert.NoError(t, err, "handlers must not see the publisher's cancellation")
	}
}

func TestInMemoryEventBus_AsyncRejectsAfterStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsync(1, 1))
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))

	err := bus.Publish(context.Background(), newTestEvent("LeafAdded"))
	assert.ErrorIs(t, err, ErrBusStopped)
}

func TestInMemoryEventBus_AsyncQueueFullDispatchesInline(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithAsync(1, 1))
	block := make(chan struct{})
	blocker := &blockingHandler{release: block, started: make(chan struct{}, 1)}
	h := newTestHandler("LeafAdded")
	bus.Subscribe(blocker, "Blocker")
	bus.Subscribe(h)
	require.NoError(t, bus.Start(context.Background()))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("Blocker")))
	<-blocker.started
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeafAdded"))) // fills the queue
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeafAdded"))) // inline
	assert.GreaterOrEqual(t, h.count(), 1)

	close(block)
	require.NoError(t, bus.Stop(context.Background()))
	assert.Equal(t, 2, h.count())
}

type blockingHandler struct {
	release chan struct{}
	started chan struct{}
}

func (b *blockingHandler) Handle(context.Context, shared.DomainEvent) error {
	b.started <- struct{}{}
	<-b.release
	return nil
}

func (b *blockingHandler) EventTypes() []string { return []string{"Blocker"} }
