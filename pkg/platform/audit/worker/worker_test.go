package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "custodia/pkg/platform/audit"
	"custodia/pkg/platform/audit/publisher"
	"custodia/pkg/platform/audit/store/memory"
)

func TestWorkerPersistsEvents(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 4)
	w := NewWorker(store, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	inbox <- audit.Event{Action: audit.ActionRecordCreated, ItemID: "item-1"}
	inbox <- audit.Event{Action: audit.ActionHandoverLogged, ItemID: "item-1"}

	require.Eventually(t, func() bool {
		return len(store.All()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	events := store.All()
	assert.Equal(t, audit.ActionRecordCreated, events[0].Action)
	assert.Equal(t, audit.ActionHandoverLogged, events[1].Action)
}

// TestWorkerConsumesPublisherInbox covers the production wiring: a publisher
// enqueues into a shared inbox and a supervised worker persists from it.
func TestWorkerConsumesPublisherInbox(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 8)
	p := publisher.NewPublisher(store, publisher.WithWorkerInbox(inbox))
	w := NewWorker(store, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, p.Emit(ctx, audit.Event{Action: audit.ActionRecordCreated, ItemID: "item-1"}))
	require.NoError(t, p.Emit(ctx, audit.Event{Action: audit.ActionHandoverLogged, ItemID: "item-1"}))

	require.Eventually(t, func() bool {
		return len(store.All()) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

type failingStore struct{ err error }

func (f *failingStore) Append(context.Context, audit.Event) error { return f.err }

func TestWorkerStopsOnStoreFailure(t *testing.T) {
	boom := errors.New("boom")
	inbox := make(chan audit.Event, 1)
	w := NewWorker(&failingStore{err: boom}, inbox)

	inbox <- audit.Event{Action: audit.ActionRecordCreated, ItemID: "item-1"}

	err := w.Run(context.Background())
	require.ErrorIs(t, err, boom)
}
