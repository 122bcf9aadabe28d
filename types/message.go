package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageKind identifies one of the four coordination message kinds exchanged
// between instances of the same origin. The set is closed: decoding rejects
// any other value so handlers can switch exhaustively.
type MessageKind string

const (
	// KindSession is broadcast by the leader and carries the session id.
	KindSession MessageKind = "session"

	// KindRequestSession is sent by a follower asking the leader to
	// (re-)broadcast the current session id.
	KindRequestSession MessageKind = "request_session"

	// KindEvents is sent by a follower handing tracked events to the leader.
	KindEvents MessageKind = "events"

	// KindHeartbeat is broadcast periodically by the leader and carries its
	// emission timestamp for liveness detection.
	KindHeartbeat MessageKind = "heartbeat"
)

// Message is the wire unit of the cross-instance channel.
//
// Exactly one payload field is meaningful per kind:
//   - KindSession: SessionID
//   - KindRequestSession: none
//   - KindEvents: Events
//   - KindHeartbeat: SentAt
//
// SenderID is always set so receivers can discard their own broadcasts
// (the channel delivers a published message back to its sender).
type Message struct {
	Kind      MessageKind `json:"kind"`
	SenderID  string      `json:"senderId"`
	SessionID string      `json:"sessionId,omitempty"`
	SentAt    time.Time   `json:"sentAt,omitempty"`
	Events    []Event     `json:"events,omitempty"`
}

// Validate checks that the message carries a known kind, a sender id and the
// payload its kind requires.
//
// Returns:
//   - error: ErrMalformedMessage (wrapped with detail) if invalid, nil otherwise
func (m *Message) Validate() error {
	if m.SenderID == "" {
		return fmt.Errorf("%w: missing sender id", ErrMalformedMessage)
	}

	switch m.Kind {
	case KindSession:
		if m.SessionID == "" {
			return fmt.Errorf("%w: session message without session id", ErrMalformedMessage)
		}
	case KindRequestSession:
		// No payload.
	case KindEvents:
		if len(m.Events) == 0 {
			return fmt.Errorf("%w: events message without events", ErrMalformedMessage)
		}
	case KindHeartbeat:
		if m.SentAt.IsZero() {
			return fmt.Errorf("%w: heartbeat without timestamp", ErrMalformedMessage)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedMessage, m.Kind)
	}

	return nil
}

// EncodeMessage serializes a message for the channel.
//
// Returns:
//   - []byte: JSON encoding of the message
//   - error: Validation or marshaling error
func EncodeMessage(m Message) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	return data, nil
}

// DecodeMessage parses and validates a message received from the channel.
//
// Returns:
//   - Message: The decoded message
//   - error: ErrMalformedMessage if the payload is not a valid message
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	if err := m.Validate(); err != nil {
		return Message{}, err
	}

	return m, nil
}
