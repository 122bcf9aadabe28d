// Package types provides core type definitions and interfaces for the tabtrack library.
//
// This package contains shared types that are used across multiple packages in the
// tabtrack library. By keeping these types in a separate package, we avoid import
// cycles between the main tabtrack package and its internal implementations.
//
// Key types:
//   - Event: A single tracked behavioral event
//   - SessionInit: Environment signals sent with a session-start request
//   - Message: The closed union of coordination messages exchanged between instances
//   - State: Instance lifecycle state
//   - Channel, SharedStore, Transport: Injected runtime dependencies
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
