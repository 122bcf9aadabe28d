package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

func TestMemoryGetPutDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "leader")
	require.ErrorIs(t, err, types.ErrKeyNotFound)

	require.NoError(t, m.Put(ctx, "leader", "tab-a"))

	value, err := m.Get(ctx, "leader")
	require.NoError(t, err)
	require.Equal(t, "tab-a", value)

	// Last writer wins.
	require.NoError(t, m.Put(ctx, "leader", "tab-b"))
	value, err = m.Get(ctx, "leader")
	require.NoError(t, err)
	require.Equal(t, "tab-b", value)

	require.NoError(t, m.Delete(ctx, "leader"))
	_, err = m.Get(ctx, "leader")
	require.ErrorIs(t, err, types.ErrKeyNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, m.Delete(ctx, "leader"))
}

func TestMemoryWatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m := NewMemory()
	require.NoError(t, m.Put(ctx, "leader", "tab-a"))

	updates, stop, err := m.Watch(ctx, "leader")
	require.NoError(t, err)
	defer stop()

	// Current value is delivered first.
	select {
	case update := <-updates:
		require.Equal(t, "tab-a", update.Value)
		require.False(t, update.Deleted)
	case <-ctx.Done():
		t.Fatal("timed out waiting for initial value")
	}

	require.NoError(t, m.Put(ctx, "leader", "tab-b"))
	select {
	case update := <-updates:
		require.Equal(t, "tab-b", update.Value)
	case <-ctx.Done():
		t.Fatal("timed out waiting for update")
	}

	require.NoError(t, m.Delete(ctx, "leader"))
	select {
	case update := <-updates:
		require.True(t, update.Deleted)
	case <-ctx.Done():
		t.Fatal("timed out waiting for delete")
	}

	// Updates to other keys are not delivered.
	require.NoError(t, m.Put(ctx, "other", "value"))
	select {
	case update, ok := <-updates:
		if ok {
			t.Fatalf("unexpected update: %+v", update)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryWatchStopIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, stop, err := m.Watch(ctx, "leader")
	require.NoError(t, err)

	stop()
	stop()

	// A stopped watcher no longer receives updates.
	require.NoError(t, m.Put(ctx, "leader", "tab-a"))
}
