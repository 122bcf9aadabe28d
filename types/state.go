package types

// State represents the instance lifecycle state.
//
// States follow a defined progression during normal operation:
//
//	StateInit → StateFollower → StateFollowerReady    (adopted a session id)
//	StateInit → StateLeader   → StateLeaderReady      (started a session)
//
// A follower that wins election moves to the corresponding leader state; a
// leader that observes the leadership token held by another instance moves
// back to the corresponding follower state. StateShutdown is terminal.
type State int

const (
	// StateInit is the initial state before Start.
	StateInit State = iota

	// StateFollower indicates a follower with no session id cached.
	StateFollower

	// StateFollowerReady indicates a follower with a cached session id.
	StateFollowerReady

	// StateLeader indicates the leader before a session id is known.
	StateLeader

	// StateLeaderReady indicates the leader with a known session id.
	StateLeaderReady

	// StateShutdown indicates the coordinator has been disposed.
	StateShutdown
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateFollower:
		return "Follower"
	case StateFollowerReady:
		return "FollowerReady"
	case StateLeader:
		return "Leader"
	case StateLeaderReady:
		return "LeaderReady"
	case StateShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// IsLeader reports whether the state is one of the leader states.
func (s State) IsLeader() bool {
	return s == StateLeader || s == StateLeaderReady
}

// HasSession reports whether the state implies a cached session id.
func (s State) HasSession() bool {
	return s == StateFollowerReady || s == StateLeaderReady
}
