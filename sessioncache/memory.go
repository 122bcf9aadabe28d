package sessioncache

import (
	"context"
	"sync"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// Memory is a process-local SessionCache. It does not survive restarts; use
// it in tests or when reload survival does not matter.
type Memory struct {
	mu        sync.Mutex
	sessionID string
}

// Compile-time assertion that Memory implements SessionCache.
var _ types.SessionCache = (*Memory)(nil)

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns the cached session id, or "" when nothing is cached.
func (c *Memory) Load(_ context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sessionID, nil
}

// Store replaces the cached session id.
func (c *Memory) Store(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessionID = sessionID

	return nil
}
