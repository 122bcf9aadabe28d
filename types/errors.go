package types

import "errors"

// Sentinel errors for the tabtrack library.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). Components use these sentinels for known error conditions and
// wrap external errors with context using fmt.Errorf("...: %w", err).

// Coordinator errors - Public API errors returned by the Coordinator.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTransportRequired is returned when the transport is nil.
	ErrTransportRequired = errors.New("transport is required")

	// ErrAlreadyStarted is returned when Start is called on a running coordinator.
	ErrAlreadyStarted = errors.New("coordinator already started")

	// ErrNotStarted is returned when operations require a started coordinator.
	ErrNotStarted = errors.New("coordinator not started")

	// ErrDisabled is returned when the subsystem is disabled by configuration.
	ErrDisabled = errors.New("coordinator disabled")
)

// Infrastructure errors - returned by Channel, SharedStore and Transport
// implementations.
var (
	// ErrKeyNotFound is returned by SharedStore.Get for absent keys.
	ErrKeyNotFound = errors.New("key not found")

	// ErrChannelClosed is returned when publishing on a closed channel.
	ErrChannelClosed = errors.New("channel closed")

	// ErrMalformedMessage is returned when a channel payload is not one of
	// the four known message kinds or is missing its required payload.
	ErrMalformedMessage = errors.New("malformed message")
)
