package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "custodia/pkg/platform/audit"
	"custodia/pkg/platform/audit/store/memory"
)

func newEvent(itemID string) audit.Event {
	return audit.Event{
		Timestamp: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Action:    audit.ActionHandoverLogged,
		ItemID:    itemID,
		Actor:     "authority-1",
	}
}

func TestSyncEmit(t *testing.T) {
	store := memory.NewInMemoryStore()
	p := NewPublisher(store)

	require.NoError(t, p.Emit(context.Background(), newEvent("item-1")))

	events := store.All()
	require.Len(t, events, 1)
	assert.Equal(t, "item-1", events[0].ItemID)
}

func TestAsyncEmitFlushesOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	p := NewPublisher(store, WithAsyncBuffer(8))

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Emit(context.Background(), newEvent("item-1")))
	}
	p.Close()

	assert.Len(t, store.All(), 5)
}

func TestAsyncEmitHonorsContextWhenBufferFull(t *testing.T) {
	// A publisher whose drain loop never runs keeps the buffer full after one
	// event; the second Emit must give up when the context does.
	store := memory.NewInMemoryStore()
	blocked := &Publisher{store: store, inbox: make(chan audit.Event, 1), done: make(chan struct{})}
	require.NoError(t, blocked.Emit(context.Background(), newEvent("item-1")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := blocked.Emit(ctx, newEvent("item-2"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerInboxRouting(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 2)
	p := NewPublisher(store, WithWorkerInbox(inbox))

	require.NoError(t, p.Emit(context.Background(), newEvent("item-1")))

	// The publisher only enqueues; persisting is the external worker's job.
	assert.Empty(t, store.All())
	select {
	case e := <-inbox:
		assert.Equal(t, "item-1", e.ItemID)
	default:
		t.Fatal("expected the event on the worker inbox")
	}

	// Close must leave the inbox open for the worker that owns it.
	p.Close()
	require.NoError(t, p.Emit(context.Background(), newEvent("item-2")))
	assert.Len(t, inbox, 1)
}

func TestCloseIsIdempotent(t *testing.T) {
	p := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	p.Close()
	p.Close()
}
