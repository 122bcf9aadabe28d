package types

import "context"

// KeyUpdate describes an observed change to a SharedStore key.
type KeyUpdate struct {
	Key     string
	Value   string
	Deleted bool
}

// SharedStore is the durable key-value store visible to every instance of the
// same origin. It holds the leadership token and is the only value mutated by
// multiple instances concurrently.
//
// Writes are last-writer-wins; the store offers no locking primitive stronger
// than that. Leadership election is therefore advisory: a claimer writes its
// own id and re-reads to verify, tolerating short multi-leader windows rather
// than serializing through the server.
//
// A nil SharedStore is a valid degraded configuration: leadership claims fail
// silently and the instance behaves as an unelected follower indefinitely.
type SharedStore interface {
	// Get returns the value for key, or ErrKeyNotFound if absent.
	Get(ctx context.Context, key string) (string, error)

	// Put writes the value for key with last-writer-wins semantics.
	Put(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Watch delivers updates to key until the context is cancelled or the
	// returned stop function is called. The current value, if any, is
	// delivered first.
	//
	// Returns:
	//   - <-chan KeyUpdate: Update stream
	//   - func(): Stop function, safe to call more than once
	//   - error: Watch setup failure
	Watch(ctx context.Context, key string) (<-chan KeyUpdate, func(), error)
}
