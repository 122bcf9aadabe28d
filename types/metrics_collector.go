package types

// MetricsCollector defines methods for recording coordinator metrics.
//
// Implementations must be safe for concurrent use. A no-op implementation is
// used when no collector is configured.
type MetricsCollector interface {
	// RecordStateTransition records an instance state transition.
	RecordStateTransition(from, to State)

	// RecordLeadershipChange records this instance gaining or losing
	// leadership.
	RecordLeadershipChange(isLeader bool)

	// RecordHeartbeat records a heartbeat publish attempt.
	RecordHeartbeat(success bool)

	// RecordMessage records a channel message, sent or received, by kind.
	RecordMessage(kind MessageKind, sent bool)

	// RecordEventTracked records a Track call by disposition:
	// "buffered" (leader path), "forwarded" (follower path) or "dropped".
	RecordEventTracked(disposition string)

	// RecordFlush records a flush attempt by result ("ok", "failed" or
	// "skipped") and the number of events in the drained batch.
	RecordFlush(result string, size int)

	// RecordBatchDropped records events discarded after delivery failure.
	RecordBatchDropped(size int)

	// RecordSessionStart records a session-start exchange attempt.
	RecordSessionStart(success bool)
}
