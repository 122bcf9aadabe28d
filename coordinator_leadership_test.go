package tabtrack_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	tabtrack "github.com/eridhobffry/paguyuban-next-sub001"
	"github.com/eridhobffry/paguyuban-next-sub001/channel"
	"github.com/eridhobffry/paguyuban-next-sub001/store"
	tabtest "github.com/eridhobffry/paguyuban-next-sub001/testing"
)

// countLeaders returns how many of the given coordinators currently believe
// they lead.
func countLeaders(coords []*tabtrack.Coordinator) int {
	n := 0
	for _, c := range coords {
		if c.IsLeader() {
			n++
		}
	}
	return n
}

func TestLeadershipExactlyOneLeader(t *testing.T) {
	bus := channel.NewMemory()
	shared := store.NewMemory()
	tr := tabtest.NewRecordingTransport("sess-1")
	ctx := context.Background()

	var coords []*tabtrack.Coordinator
	for range 3 {
		coord, err := tabtrack.NewCoordinator(tabtrack.TestConfig(), bus, shared, tr,
			tabtrack.WithLogger(tabtest.NewTestLogger(t)))
		require.NoError(t, err)
		require.NoError(t, coord.Start(ctx))
		coords = append(coords, coord)
	}
	defer func() {
		for _, c := range coords {
			_ = c.Stop(context.Background())
		}
	}()

	// Leadership converges to exactly one instance and stays there.
	require.Eventually(t, func() bool {
		return countLeaders(coords) == 1
	}, 5*time.Second, 10*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	require.Equal(t, 1, countLeaders(coords))

	// The whole group performed exactly one session-start exchange.
	require.Eventually(t, func() bool {
		for _, c := range coords {
			if c.SessionID() != "sess-1" {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)
	require.Equal(t, 1, tr.SessionStartCalls())
}

func TestLeadershipTakeoverOnCleanShutdown(t *testing.T) {
	bus := channel.NewMemory()
	shared := store.NewMemory()
	tr := tabtest.NewRecordingTransport("sess-1")
	ctx := context.Background()

	leader, err := tabtrack.NewCoordinator(tabtrack.TestConfig(), bus, shared, tr,
		tabtrack.WithLogger(tabtest.NewTestLogger(t)))
	require.NoError(t, err)
	require.NoError(t, leader.Start(ctx))
	require.True(t, leader.IsLeader())

	follower, err := tabtrack.NewCoordinator(tabtrack.TestConfig(), bus, shared, tr,
		tabtrack.WithLogger(tabtest.NewTestLogger(t)))
	require.NoError(t, err)
	require.NoError(t, follower.Start(ctx))
	require.False(t, follower.IsLeader())
	defer func() { _ = follower.Stop(context.Background()) }()

	// A clean shutdown releases the token; the follower claims it without
	// waiting out the silence timeout.
	require.NoError(t, leader.Stop(ctx))

	require.Eventually(t, func() bool {
		return follower.IsLeader()
	}, 5*time.Second, 10*time.Millisecond)
}

func TestLeadershipFailoverOnSilence(t *testing.T) {
	// The leader and follower share the store but talk over NATS. Closing
	// the leader's connection kills its heartbeats without releasing the
	// token, simulating a crash.
	ns, leaderConn := tabtest.StartEmbeddedNATS(t)
	followerConn := tabtest.ConnectNATS(t, ns)

	leaderBus, err := channel.NewNATS(leaderConn, "", tabtest.NewTestLogger(t))
	require.NoError(t, err)
	followerBus, err := channel.NewNATS(followerConn, "", tabtest.NewTestLogger(t))
	require.NoError(t, err)

	shared := store.NewMemory()
	tr := tabtest.NewRecordingTransport("sess-1")
	ctx := context.Background()

	leader, err := tabtrack.NewCoordinator(tabtrack.TestConfig(), leaderBus, shared, tr,
		tabtrack.WithLogger(tabtest.NewTestLogger(t)))
	require.NoError(t, err)
	require.NoError(t, leader.Start(ctx))
	require.True(t, leader.IsLeader())

	follower, err := tabtrack.NewCoordinator(tabtrack.TestConfig(), followerBus, shared, tr,
		tabtrack.WithLogger(tabtest.NewTestLogger(t)))
	require.NoError(t, err)
	require.NoError(t, follower.Start(ctx))
	require.False(t, follower.IsLeader())
	defer func() { _ = follower.Stop(context.Background()) }()

	// Let the follower see at least one heartbeat first.
	time.Sleep(150 * time.Millisecond)

	leaderConn.Close()

	// Silence past HeartbeatTimeout triggers a takeover claim; the stale
	// token is overwritten last-writer-wins.
	require.Eventually(t, func() bool {
		return follower.IsLeader()
	}, 10*time.Second, 20*time.Millisecond)
}

func TestLeadershipConflictResolvesByToken(t *testing.T) {
	// Two instances that both believe they lead reconcile through the
	// store when they hear each other's heartbeats: the token holder
	// stays, the other steps down.
	bus := channel.NewMemory()
	shared := store.NewMemory()
	tr := tabtest.NewRecordingTransport("sess-1")
	ctx := context.Background()

	a, err := tabtrack.NewCoordinator(tabtrack.TestConfig(), bus, shared, tr,
		tabtrack.WithLogger(tabtest.NewTestLogger(t)))
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))
	defer func() { _ = a.Stop(context.Background()) }()

	b, err := tabtrack.NewCoordinator(tabtrack.TestConfig(), bus, shared, tr,
		tabtrack.WithLogger(tabtest.NewTestLogger(t)))
	require.NoError(t, err)
	require.NoError(t, b.Start(ctx))
	defer func() { _ = b.Stop(context.Background()) }()

	// Force a conflict: overwrite the token with b's id behind a's back.
	require.NoError(t, shared.Put(ctx, "leader", b.ClientID()))

	require.Eventually(t, func() bool {
		return b.IsLeader() && !a.IsLeader()
	}, 5*time.Second, 10*time.Millisecond)
}
