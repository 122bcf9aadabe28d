package tabtrack

import "github.com/eridhobffry/paguyuban-next-sub001/types"

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root `tabtrack`
// package, while still providing a convenient `tabtrack.Event`,
// `tabtrack.State`, etc. for users.
type (
	State       = types.State
	Event       = types.Event
	SessionInit = types.SessionInit
	Message     = types.Message
	MessageKind = types.MessageKind
	KeyUpdate   = types.KeyUpdate
)

// Re-export interfaces from the types subpackage for convenience.
type (
	Channel          = types.Channel
	SharedStore      = types.SharedStore
	Transport        = types.Transport
	SessionCache     = types.SessionCache
	RetryPolicy      = types.RetryPolicy
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export State constants from the types subpackage.
const (
	StateInit          = types.StateInit
	StateFollower      = types.StateFollower
	StateFollowerReady = types.StateFollowerReady
	StateLeader        = types.StateLeader
	StateLeaderReady   = types.StateLeaderReady
	StateShutdown      = types.StateShutdown
)

// Re-export MessageKind constants from the types subpackage.
const (
	KindSession        = types.KindSession
	KindRequestSession = types.KindRequestSession
	KindEvents         = types.KindEvents
	KindHeartbeat      = types.KindHeartbeat
)
