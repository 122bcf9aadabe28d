// Package tabtrack provides multi-instance telemetry coordination with
// leader-based delivery and cross-instance session sharing.
//
// When several instances of the same application origin run concurrently,
// naive telemetry produces duplicate sessions and duplicate batches. Tabtrack
// elects exactly one instance as the delivery leader: it alone performs the
// session-start exchange and ships event batches to the collector. Every
// other instance forwards its events to the leader over a shared channel and
// adopts the leader's session id, so the whole group reports as one session.
//
// # Quick Start
//
// Basic usage with default settings:
//
//	import "github.com/eridhobffry/paguyuban-next-sub001"
//
//	cfg := tabtrack.DefaultConfig()
//	cfg.Session.FirstRoute = "/pricing"
//
//	ch, _ := channel.NewNATS(natsConn, "", nil)
//	st, _ := store.NewNATS(ctx, natsConn, store.DefaultBucket)
//	tr := transport.NewHTTP("https://collect.example.com")
//
//	coord, err := tabtrack.NewCoordinator(cfg, ch, st, tr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := coord.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer coord.Stop(context.Background())
//
//	coord.Track(tabtrack.Event{Type: "click", Route: "/pricing", Element: "cta"})
//
// # Key Behaviors
//
//   - Single session: at most one session-start exchange per group lifetime,
//     regardless of how many instances run.
//   - Leader election: advisory last-writer-wins token in the shared store,
//     verified after write; short multi-leader windows resolve on verify.
//   - Failure detection: the leader broadcasts heartbeats; followers claim
//     leadership after the configured silence timeout.
//   - At-least-once batching: events buffer until a size threshold or timer
//     fires; a failed batch is handed to the retry policy, never silently
//     retried forever.
//   - Fault isolation: no error from this subsystem propagates to Track
//     callers. Degraded configurations (nil channel, nil store) stay usable.
//
// # Architecture
//
// Instances progress through a state machine:
//
//	Init → Follower → FollowerReady   (adopted the leader's session)
//	Init → Leader   → LeaderReady     (performed the session-start exchange)
//
// A follower that detects leader silence claims the token and becomes a
// leader; a leader that observes the token held by someone else steps down.
// Shutdown is terminal and flushes buffered events durably.
//
// See the examples/ directory for a complete working example.
package tabtrack
