package election

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// Token implements advisory leader election over a last-writer-wins shared
// store. The token value is the client id of the instance currently
// considered leader.
//
// The claim protocol is deliberately weaker than a lock:
//  1. Read the token. If it already holds our id (an instance reload), resume
//     leadership. If it holds another id, become a follower.
//  2. If absent, write our own id, re-read, and accept leadership only if the
//     stored value equals our id.
//
// Because the store is last-writer-wins rather than compare-and-swap, two
// instances racing on an empty token can briefly both believe they lead. The
// design target is "eventually about one leader", not mutual exclusion;
// followers converge on the next periodic check. Do not upgrade this to a
// strong lock.
type Token struct {
	store    types.SharedStore
	key      string
	clientID string

	mu       sync.RWMutex
	isLeader bool
}

// New creates an election token handle.
//
// Parameters:
//   - store: Shared last-writer-wins store visible to all instances
//   - key: Token key (e.g. "leader")
//   - clientID: This instance's client id
func New(store types.SharedStore, key, clientID string) *Token {
	return &Token{
		store:    store,
		key:      key,
		clientID: clientID,
	}
}

// Claim runs the claim protocol once.
//
// Returns:
//   - bool: true if this instance now holds (or resumed) leadership
//   - error: Store access error; the caller treats any error as "not leader"
func (t *Token) Claim(ctx context.Context) (bool, error) {
	current, err := t.store.Get(ctx, t.key)
	if err != nil && !errors.Is(err, types.ErrKeyNotFound) {
		t.setLeader(false)
		return false, fmt.Errorf("failed to read leadership token: %w", err)
	}

	if err == nil && current != "" {
		won := current == t.clientID
		t.setLeader(won)

		return won, nil
	}

	// Token absent: write our id and verify it stuck. Under a concurrent
	// race the last writer wins and everyone else sees the winner here.
	if err := t.store.Put(ctx, t.key, t.clientID); err != nil {
		t.setLeader(false)
		return false, fmt.Errorf("failed to write leadership token: %w", err)
	}

	current, err = t.store.Get(ctx, t.key)
	if err != nil {
		t.setLeader(false)
		return false, fmt.Errorf("failed to verify leadership token: %w", err)
	}

	won := current == t.clientID
	t.setLeader(won)

	return won, nil
}

// Takeover forcibly claims the token: write our id, re-read, and accept
// leadership if the write stuck. Used when the current holder is presumed
// dead (heartbeat silence) or has released the token — a read-first Claim
// would see the stale id and give up forever. Last-writer-wins still
// applies: a live holder writing concurrently wins the race and this
// instance stays a follower.
//
// Returns:
//   - bool: true if this instance now holds leadership
//   - error: Store access error; the caller treats any error as "not leader"
func (t *Token) Takeover(ctx context.Context) (bool, error) {
	if err := t.store.Put(ctx, t.key, t.clientID); err != nil {
		t.setLeader(false)
		return false, fmt.Errorf("failed to write leadership token: %w", err)
	}

	current, err := t.store.Get(ctx, t.key)
	if err != nil {
		t.setLeader(false)
		return false, fmt.Errorf("failed to verify leadership token: %w", err)
	}

	won := current == t.clientID
	t.setLeader(won)

	return won, nil
}

// Verify re-reads the token and reconciles the local leadership belief with
// the stored value. Called whenever the token is observed to change.
//
// Returns:
//   - bool: true if the token currently holds this instance's id
//   - error: Store access error
func (t *Token) Verify(ctx context.Context) (bool, error) {
	current, err := t.store.Get(ctx, t.key)
	if err != nil {
		if errors.Is(err, types.ErrKeyNotFound) {
			t.setLeader(false)
			return false, nil
		}

		return false, fmt.Errorf("failed to read leadership token: %w", err)
	}

	held := current == t.clientID
	t.setLeader(held)

	return held, nil
}

// Release clears the token if and only if it still holds this instance's id,
// letting a follower claim leadership without waiting for the heartbeat
// timeout. Best-effort: a racing overwrite makes this a no-op.
//
// Returns:
//   - error: Store access error
func (t *Token) Release(ctx context.Context) error {
	current, err := t.store.Get(ctx, t.key)
	if err != nil {
		if errors.Is(err, types.ErrKeyNotFound) {
			t.setLeader(false)
			return nil
		}

		return fmt.Errorf("failed to read leadership token: %w", err)
	}

	if current != t.clientID {
		t.setLeader(false)
		return nil
	}

	if err := t.store.Delete(ctx, t.key); err != nil {
		return fmt.Errorf("failed to clear leadership token: %w", err)
	}

	t.setLeader(false)

	return nil
}

// IsLeader returns the local leadership belief from the last Claim or Verify.
func (t *Token) IsLeader() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.isLeader
}

// ClientID returns the client id this token claims with.
func (t *Token) ClientID() string {
	return t.clientID
}

func (t *Token) setLeader(isLeader bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.isLeader = isLeader
}
