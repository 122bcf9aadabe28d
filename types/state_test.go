package types

import "testing"

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateInit, "Init"},
		{StateFollower, "Follower"},
		{StateFollowerReady, "FollowerReady"},
		{StateLeader, "Leader"},
		{StateLeaderReady, "LeaderReady"},
		{StateShutdown, "Shutdown"},
		{State(999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatePredicates(t *testing.T) {
	tests := []struct {
		state      State
		isLeader   bool
		hasSession bool
	}{
		{StateInit, false, false},
		{StateFollower, false, false},
		{StateFollowerReady, false, true},
		{StateLeader, true, false},
		{StateLeaderReady, true, true},
		{StateShutdown, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.IsLeader(); got != tt.isLeader {
				t.Errorf("State.IsLeader() = %v, want %v", got, tt.isLeader)
			}
			if got := tt.state.HasSession(); got != tt.hasSession {
				t.Errorf("State.HasSession() = %v, want %v", got, tt.hasSession)
			}
		})
	}
}
