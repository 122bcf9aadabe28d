package store

import (
	"context"
	"sync"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// Memory is an in-process SharedStore with last-writer-wins writes and
// best-effort watch notifications. Safe for concurrent use.
//
// Useful for tests and for wiring several simulated instances inside one
// process without a NATS server.
type Memory struct {
	mu       sync.Mutex
	data     map[string]string
	watchers map[string]map[int]chan types.KeyUpdate
	nextID   int
}

// Compile-time assertion that Memory implements SharedStore.
var _ types.SharedStore = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data:     make(map[string]string),
		watchers: make(map[string]map[int]chan types.KeyUpdate),
	}
}

// Get returns the value for key, or types.ErrKeyNotFound if absent.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.data[key]
	if !ok {
		return "", types.ErrKeyNotFound
	}

	return value, nil
}

// Put writes the value for key, overwriting any previous value.
func (m *Memory) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.notifyLocked(types.KeyUpdate{Key: key, Value: value})
	m.mu.Unlock()

	return nil
}

// Delete removes the key. Deleting an absent key is a no-op.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	_, existed := m.data[key]
	delete(m.data, key)
	if existed {
		m.notifyLocked(types.KeyUpdate{Key: key, Deleted: true})
	}
	m.mu.Unlock()

	return nil
}

// Watch delivers updates for key until the context is cancelled or the stop
// function is called. The current value, if any, is delivered first.
// Notifications are best-effort: updates are dropped if a watcher's buffer
// is full.
func (m *Memory) Watch(ctx context.Context, key string) (<-chan types.KeyUpdate, func(), error) {
	ch := make(chan types.KeyUpdate, 16)

	m.mu.Lock()
	id := m.nextID
	m.nextID++

	if m.watchers[key] == nil {
		m.watchers[key] = make(map[int]chan types.KeyUpdate)
	}
	m.watchers[key][id] = ch

	if value, ok := m.data[key]; ok {
		ch <- types.KeyUpdate{Key: key, Value: value}
	}
	m.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.watchers[key], id)
			m.mu.Unlock()
			close(ch)
		})
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	return ch, stop, nil
}

func (m *Memory) notifyLocked(update types.KeyUpdate) {
	for _, ch := range m.watchers[update.Key] {
		select {
		case ch <- update:
		default:
		}
	}
}
