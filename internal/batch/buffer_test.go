package batch

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

func TestBufferAppendAndDrain(t *testing.T) {
	b := New()

	for i := 0; i < 5; i++ {
		n := b.Append(types.Event{Type: fmt.Sprintf("ev-%d", i)})
		require.Equal(t, i+1, n)
	}

	drained := b.Drain()
	require.Len(t, drained, 5)
	require.Equal(t, "ev-0", drained[0].Type)
	require.Equal(t, "ev-4", drained[4].Type)
	require.Zero(t, b.Len())

	// Draining an empty buffer yields nothing.
	require.Empty(t, b.Drain())
}

func TestBufferDrainExcludesConcurrentAppends(t *testing.T) {
	b := New()
	b.Append(types.Event{Type: "before"})

	drained := b.Drain()
	b.Append(types.Event{Type: "during"})

	require.Len(t, drained, 1)
	require.Equal(t, "before", drained[0].Type)
	require.Equal(t, 1, b.Len())
}

func TestBufferRequeuePrepends(t *testing.T) {
	b := New()
	b.Append(types.Event{Type: "new"})

	b.Requeue([]types.Event{{Type: "failed-0"}, {Type: "failed-1"}})

	drained := b.Drain()
	require.Len(t, drained, 3)
	require.Equal(t, "failed-0", drained[0].Type)
	require.Equal(t, "failed-1", drained[1].Type)
	require.Equal(t, "new", drained[2].Type)
}

func TestBufferConcurrentAppend(t *testing.T) {
	b := New()

	const goroutines = 8
	const perGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				b.Append(types.Event{Type: "concurrent"})
			}
		}()
	}
	wg.Wait()

	require.Equal(t, goroutines*perGoroutine, b.Len())
}
