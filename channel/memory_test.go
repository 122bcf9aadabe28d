package channel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// msgRecorder collects delivered messages across goroutines.
type msgRecorder struct {
	mu   sync.Mutex
	msgs []types.Message
}

func (r *msgRecorder) record(m types.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *msgRecorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func (r *msgRecorder) at(i int) types.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.msgs[i]
}

func TestMemoryDeliversToAllSubscribers(t *testing.T) {
	ch := NewMemory()
	ctx := context.Background()

	var a, b msgRecorder
	_, err := ch.Subscribe(a.record)
	require.NoError(t, err)
	_, err = ch.Subscribe(b.record)
	require.NoError(t, err)

	require.NoError(t, ch.Publish(ctx, types.Message{
		Kind: types.KindHeartbeat, SenderID: "tab-a", SentAt: time.Now(),
	}))

	require.Eventually(t, func() bool {
		return a.len() == 1 && b.len() == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "tab-a", a.at(0).SenderID)
}

func TestMemoryPreservesPublishOrder(t *testing.T) {
	ch := NewMemory()
	ctx := context.Background()

	var got msgRecorder
	_, err := ch.Subscribe(got.record)
	require.NoError(t, err)

	const total = 20
	base := time.Now()
	for i := range total {
		require.NoError(t, ch.Publish(ctx, types.Message{
			Kind: types.KindHeartbeat, SenderID: "tab-a", SentAt: base.Add(time.Duration(i) * time.Millisecond),
		}))
	}

	require.Eventually(t, func() bool { return got.len() == total }, time.Second, 5*time.Millisecond)
	for i := 1; i < total; i++ {
		require.True(t, got.at(i).SentAt.After(got.at(i-1).SentAt))
	}
}

func TestMemoryHandlerMayPublish(t *testing.T) {
	ch := NewMemory()
	ctx := context.Background()

	var sessions msgRecorder
	_, err := ch.Subscribe(func(m types.Message) {
		if m.Kind == types.KindRequestSession {
			_ = ch.Publish(ctx, types.Message{
				Kind: types.KindSession, SenderID: "leader", SessionID: "sess-1",
			})
			return
		}
		sessions.record(m)
	})
	require.NoError(t, err)

	require.NoError(t, ch.Publish(ctx, types.Message{
		Kind: types.KindRequestSession, SenderID: "tab-b",
	}))

	require.Eventually(t, func() bool { return sessions.len() == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "sess-1", sessions.at(0).SessionID)
}

func TestMemoryRejectsMalformed(t *testing.T) {
	ch := NewMemory()

	err := ch.Publish(context.Background(), types.Message{Kind: "bogus", SenderID: "tab-a"})
	require.ErrorIs(t, err, types.ErrMalformedMessage)
}

func TestMemoryUnsubscribe(t *testing.T) {
	ch := NewMemory()
	ctx := context.Background()

	var got msgRecorder
	unsubscribe, err := ch.Subscribe(got.record)
	require.NoError(t, err)

	msg := types.Message{Kind: types.KindRequestSession, SenderID: "tab-a"}
	require.NoError(t, ch.Publish(ctx, msg))
	require.Eventually(t, func() bool { return got.len() == 1 }, time.Second, 5*time.Millisecond)

	unsubscribe()
	unsubscribe() // safe to call twice
	require.NoError(t, ch.Publish(ctx, msg))

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, got.len())
}

func TestMemoryClose(t *testing.T) {
	ch := NewMemory()
	require.NoError(t, ch.Close())

	err := ch.Publish(context.Background(), types.Message{Kind: types.KindRequestSession, SenderID: "x"})
	require.ErrorIs(t, err, types.ErrChannelClosed)

	_, err = ch.Subscribe(func(types.Message) {})
	require.ErrorIs(t, err, types.ErrChannelClosed)
}
