package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "custodia/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, audit.Event{Action: audit.ActionRecordCreated, ItemID: "item-1"}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: audit.ActionHandoverLogged, ItemID: "item-1"}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: audit.ActionRecordCreated, ItemID: "item-2"}))

	t.Run("ListByItem filters by item, oldest first", func(t *testing.T) {
		events, err := store.ListByItem(ctx, "item-1")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, audit.ActionRecordCreated, events[0].Action)
		assert.Equal(t, audit.ActionHandoverLogged, events[1].Action)
	})

	t.Run("All returns every event", func(t *testing.T) {
		assert.Len(t, store.All(), 3)
	})
}
