package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/eridhobffry/paguyuban-next-sub001/internal/kvutil"
	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// DefaultBucket is the KV bucket name used when none is configured.
const DefaultBucket = "tabtrack-coord"

// NATS is a SharedStore backed by a NATS JetStream KV bucket.
//
// Put uses a plain KV put, so writes are last-writer-wins exactly like the
// origin-local storage the design models. The election on top stays advisory;
// switching to Create/Update leases here would silently strengthen it.
type NATS struct {
	kv jetstream.KeyValue
}

// Compile-time assertion that NATS implements SharedStore.
var _ types.SharedStore = (*NATS)(nil)

// NewNATS creates or opens the coordination KV bucket and returns a store
// bound to it.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - conn: NATS connection shared with the channel
//   - bucket: Bucket name (DefaultBucket when empty)
//
// Returns:
//   - *NATS: The store
//   - error: JetStream or bucket bootstrap error
func NewNATS(ctx context.Context, conn *nats.Conn, bucket string) (*NATS, error) {
	if conn == nil {
		return nil, errors.New("nats connection is required")
	}
	if bucket == "" {
		bucket = DefaultBucket
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:  bucket,
		History: 1, // Keep only latest value
	}, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to create/open KV bucket %s: %w", bucket, err)
	}

	return &NATS{kv: kv}, nil
}

// NewNATSWithKV wraps an existing KV bucket. Useful when the caller manages
// bucket lifecycle itself.
func NewNATSWithKV(kv jetstream.KeyValue) *NATS {
	return &NATS{kv: kv}
}

// Get returns the value for key, or types.ErrKeyNotFound if absent.
func (s *NATS) Get(ctx context.Context, key string) (string, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", types.ErrKeyNotFound
		}

		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return string(entry.Value()), nil
}

// Put writes the value for key with last-writer-wins semantics.
func (s *NATS) Put(ctx context.Context, key, value string) error {
	if _, err := s.kv.Put(ctx, key, []byte(value)); err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return nil
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *NATS) Delete(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}

	return nil
}

// Watch delivers updates for key until the context is cancelled or the stop
// function is called. The current value, if any, is delivered first.
func (s *NATS) Watch(ctx context.Context, key string) (<-chan types.KeyUpdate, func(), error) {
	watcher, err := s.kv.Watch(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch key %s: %w", key, err)
	}

	out := make(chan types.KeyUpdate, 16)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			_ = watcher.Stop()
		})
	}

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case entry, ok := <-watcher.Updates():
				if !ok {
					return
				}
				if entry == nil {
					// End of initial replay marker; keep watching.
					continue
				}

				update := types.KeyUpdate{Key: entry.Key()}
				switch entry.Operation() {
				case jetstream.KeyValueDelete, jetstream.KeyValuePurge:
					update.Deleted = true
				default:
					update.Value = string(entry.Value())
				}

				select {
				case out <- update:
				case <-ctx.Done():
					stop()
					return
				}
			}
		}
	}()

	return out, stop, nil
}
