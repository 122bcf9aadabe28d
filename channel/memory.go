package channel

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// memorySubscriberBuffer is the per-subscriber delivery queue depth. A
// subscriber that falls this far behind starts losing messages, matching the
// channel's best-effort contract.
const memorySubscriberBuffer = 256

// Memory is an in-process Channel. One Memory instance plays the role of the
// origin-wide bus: every simulated instance subscribes to the same Memory and
// sees every publish, its own included.
//
// Each subscriber drains its own FIFO queue on a dedicated delivery
// goroutine, so handlers may publish without re-entering the bus and
// per-sender ordering is preserved by construction.
type Memory struct {
	subscribers *xsync.Map[uint64, *memorySubscriber]
	nextID      atomic.Uint64

	mu     sync.Mutex
	closed bool
}

type memorySubscriber struct {
	queue chan types.Message
	stop  chan struct{}
	once  sync.Once
}

func (s *memorySubscriber) close() {
	s.once.Do(func() { close(s.stop) })
}

// Compile-time assertion that Memory implements Channel.
var _ types.Channel = (*Memory)(nil)

// NewMemory creates an in-process channel.
func NewMemory() *Memory {
	return &Memory{
		subscribers: xsync.NewMap[uint64, *memorySubscriber](),
	}
}

// Publish enqueues the message for every registered subscriber, the sender's
// own included. A subscriber whose queue is full loses the message.
func (c *Memory) Publish(_ context.Context, msg types.Message) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return types.ErrChannelClosed
	}

	if err := msg.Validate(); err != nil {
		return err
	}

	c.subscribers.Range(func(_ uint64, sub *memorySubscriber) bool {
		select {
		case sub.queue <- msg:
		default:
		}
		return true
	})

	return nil
}

// Subscribe registers a handler for every published message. The handler
// runs on a delivery goroutine owned by the subscription.
func (c *Memory) Subscribe(handler func(types.Message)) (func(), error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return nil, types.ErrChannelClosed
	}

	sub := &memorySubscriber{
		queue: make(chan types.Message, memorySubscriberBuffer),
		stop:  make(chan struct{}),
	}
	id := c.nextID.Add(1)
	c.subscribers.Store(id, sub)

	go func() {
		for {
			select {
			case <-sub.stop:
				return
			case msg := <-sub.queue:
				handler(msg)
			}
		}
	}()

	unsubscribe := func() {
		c.subscribers.Delete(id)
		sub.close()
	}

	return unsubscribe, nil
}

// Close stops delivery; subsequent Publish and Subscribe calls return
// ErrChannelClosed.
func (c *Memory) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.subscribers.Range(func(id uint64, sub *memorySubscriber) bool {
		c.subscribers.Delete(id)
		sub.close()
		return true
	})

	return nil
}
