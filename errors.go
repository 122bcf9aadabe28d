package tabtrack

import "github.com/eridhobffry/paguyuban-next-sub001/types"

// Sentinel errors returned by the Coordinator, re-exported from the types
// subpackage so callers can use errors.Is against tabtrack.Err* directly.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrTransportRequired is returned when the transport is nil.
	ErrTransportRequired = types.ErrTransportRequired

	// ErrAlreadyStarted is returned when Start is called on a running coordinator.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrNotStarted is returned when Stop is called before Start.
	ErrNotStarted = types.ErrNotStarted

	// ErrDisabled is returned by Start when the subsystem is disabled by
	// configuration. Track and Flush become silent no-ops in that case.
	ErrDisabled = types.ErrDisabled
)
