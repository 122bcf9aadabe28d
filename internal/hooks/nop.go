// Package hooks provides the default no-op hook implementation.
package hooks

import (
	"context"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnStateChanged:      h.OnStateChanged,
		OnLeadershipChanged: h.OnLeadershipChanged,
		OnSessionStarted:    h.OnSessionStarted,
		OnFlush:             h.OnFlush,
		OnError:             h.OnError,
	}
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(ctx context.Context, from, to types.State) error {
	return nil
}

// OnLeadershipChanged is a no-op implementation.
func (h *NopHooks) OnLeadershipChanged(ctx context.Context, isLeader bool) error {
	return nil
}

// OnSessionStarted is a no-op implementation.
func (h *NopHooks) OnSessionStarted(ctx context.Context, sessionID string) error {
	return nil
}

// OnFlush is a no-op implementation.
func (h *NopHooks) OnFlush(ctx context.Context, delivered int, err error) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(ctx context.Context, err error) error {
	return nil
}
