package heartbeat

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/eridhobffry/paguyuban-next-sub001/channel"
	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

func TestPublisherEmitsOnInterval(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mock := quartz.NewMock(t)
	ch := channel.NewMemory()

	var mu sync.Mutex
	var beats []types.Message
	_, err := ch.Subscribe(func(msg types.Message) {
		mu.Lock()
		beats = append(beats, msg)
		mu.Unlock()
	})
	require.NoError(t, err)

	pub := NewPublisher(ch, "tab-a", 10*time.Second, mock)
	require.NoError(t, pub.Start(ctx))
	defer func() { _ = pub.Stop() }()

	// First heartbeat is published immediately on Start; the bus delivers
	// it on the subscriber's own goroutine.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(beats) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	require.Equal(t, types.KindHeartbeat, beats[0].Kind)
	require.Equal(t, "tab-a", beats[0].SenderID)
	require.False(t, beats[0].SentAt.IsZero())
	mu.Unlock()

	mock.Advance(10 * time.Second).MustWait(ctx)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(beats) == 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, pub.Stop())
	require.ErrorIs(t, pub.Stop(), ErrNotStarted)
}

func TestPublisherRequiresClientID(t *testing.T) {
	pub := NewPublisher(channel.NewMemory(), "", 10*time.Second, quartz.NewMock(t))
	require.ErrorIs(t, pub.Start(context.Background()), ErrNoClientID)
}

func TestMonitorFiresAfterSilence(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mock := quartz.NewMock(t)

	var fired atomic.Int32
	mon := NewMonitor(5*time.Second, 30*time.Second, mock, func() {
		fired.Add(1)
	})
	require.NoError(t, mon.Start(ctx))
	defer func() { _ = mon.Stop() }()

	// Six checks cover exactly the timeout; the gap is not yet exceeded.
	for i := 0; i < 6; i++ {
		mock.Advance(5 * time.Second).MustWait(ctx)
	}
	require.Equal(t, int32(0), fired.Load())

	// The next check sees a gap beyond the timeout. The mock ticker may
	// deliver coalesced late ticks back-to-back, so the counter can skip
	// values between polls.
	mock.Advance(5 * time.Second).MustWait(ctx)
	require.Eventually(t, func() bool { return fired.Load() >= 1 }, time.Second, 5*time.Millisecond)

	// And keeps firing while the leader stays silent.
	seen := fired.Load()
	mock.Advance(5 * time.Second).MustWait(ctx)
	require.Eventually(t, func() bool { return fired.Load() > seen }, time.Second, 5*time.Millisecond)
}

func TestMonitorObserveResetsWindow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mock := quartz.NewMock(t)

	var fired atomic.Int32
	mon := NewMonitor(5*time.Second, 30*time.Second, mock, func() {
		fired.Add(1)
	})
	require.NoError(t, mon.Start(ctx))
	defer func() { _ = mon.Stop() }()

	for i := 0; i < 5; i++ {
		mock.Advance(5 * time.Second).MustWait(ctx)
		mon.Observe(mock.Now())
	}

	// 25s of checks with live heartbeats: never fires.
	require.Equal(t, int32(0), fired.Load())

	// Stale timestamps never move the window backwards.
	mon.Observe(mock.Now().Add(-time.Hour))

	for i := 0; i < 7; i++ {
		mock.Advance(5 * time.Second).MustWait(ctx)
	}
	require.Eventually(t, func() bool { return fired.Load() >= 1 }, time.Second, 5*time.Millisecond)
}
