package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// DefaultSubject is the NATS subject used when none is configured.
const DefaultSubject = "tabtrack.coord"

// NATS is a Channel backed by core NATS publish/subscribe on one subject.
//
// Core NATS (not JetStream) matches the channel contract exactly: at-most-once
// delivery, no acknowledgements, per-publisher ordering. Malformed payloads on
// the subject are dropped with a log line, never surfaced to handlers.
type NATS struct {
	conn    *nats.Conn
	subject string
	logger  types.Logger

	handlers *xsync.Map[uint64, func(types.Message)]
	nextID   atomic.Uint64

	mu     sync.Mutex
	sub    *nats.Subscription
	closed bool
}

// Compile-time assertion that NATS implements Channel.
var _ types.Channel = (*NATS)(nil)

// NewNATS creates a channel on the given subject and starts receiving.
//
// Parameters:
//   - conn: NATS connection for this instance
//   - subject: Subject shared by all instances of the origin (DefaultSubject when empty)
//   - logger: Logger for dropped-message diagnostics (nil for none)
//
// Returns:
//   - *NATS: The channel
//   - error: Subscription failure
func NewNATS(conn *nats.Conn, subject string, logger types.Logger) (*NATS, error) {
	if conn == nil {
		return nil, errors.New("nats connection is required")
	}
	if subject == "" {
		subject = DefaultSubject
	}

	c := &NATS{
		conn:     conn,
		subject:  subject,
		logger:   logger,
		handlers: xsync.NewMap[uint64, func(types.Message)](),
	}

	sub, err := conn.Subscribe(subject, c.dispatch)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	c.sub = sub

	// Push the subscription interest to the server before returning, so a
	// peer publishing right after NewNATS cannot race interest propagation.
	if err := conn.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush subscription to %s: %w", subject, err)
	}

	return c, nil
}

// Publish sends a message to every instance subscribed to the subject,
// including the sender itself.
func (c *NATS) Publish(_ context.Context, msg types.Message) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return types.ErrChannelClosed
	}

	data, err := types.EncodeMessage(msg)
	if err != nil {
		return err
	}

	if err := c.conn.Publish(c.subject, data); err != nil {
		return fmt.Errorf("failed to publish %s message: %w", msg.Kind, err)
	}

	return nil
}

// Subscribe registers a handler for every message delivered on the subject.
func (c *NATS) Subscribe(handler func(types.Message)) (func(), error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return nil, types.ErrChannelClosed
	}

	id := c.nextID.Add(1)
	c.handlers.Store(id, handler)

	return func() { c.handlers.Delete(id) }, nil
}

// Close drains the NATS subscription. Registered handlers receive no further
// messages; Publish and Subscribe return ErrChannelClosed afterwards.
func (c *NATS) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if err := c.sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	return nil
}

func (c *NATS) dispatch(natsMsg *nats.Msg) {
	msg, err := types.DecodeMessage(natsMsg.Data)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("dropping malformed channel message", "error", err)
		}

		return
	}

	c.handlers.Range(func(_ uint64, handler func(types.Message)) bool {
		handler(msg)
		return true
	})
}
