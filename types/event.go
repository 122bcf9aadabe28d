package types

import "time"

// Event is a single tracked behavioral event (page view, click, custom event).
//
// Events are created by any instance but buffered only on the current leader.
// Each event carries its own creation time because the server receives batches
// with no cross-instance ordering guarantee.
type Event struct {
	// Type is the event tag, e.g. "page_view", "click", "section_visible".
	Type string `json:"type"`

	// Route is the application route the event occurred on.
	Route string `json:"route,omitempty"`

	// Section is the page section the event relates to.
	Section string `json:"section,omitempty"`

	// Element identifies the interacted element.
	Element string `json:"element,omitempty"`

	// Metadata is an opaque key/value bag attached by the caller.
	Metadata map[string]any `json:"metadata,omitempty"`

	// CreatedAt is the event creation time. Filled in by the coordinator
	// from its clock when the caller leaves it zero.
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
