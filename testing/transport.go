package testing

import (
	"context"
	"sync"
	"time"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// RecordingTransport is a Transport that records every session-start and
// batch delivery for assertions. Safe for concurrent use, including shared
// between several coordinators simulating tabs of one origin (the way real
// tabs share one server).
type RecordingTransport struct {
	mu sync.Mutex

	sessionID     string
	sessionErr    error
	sessionCalls  int
	sessionInits  []types.SessionInit
	batchErr      error
	batchDelay    time.Duration
	batches       []RecordedBatch
	durableErrors bool
}

// RecordedBatch is one SendBatch invocation.
type RecordedBatch struct {
	SessionID string
	Events    []types.Event
	Durable   bool
}

var _ types.Transport = (*RecordingTransport)(nil)

// NewRecordingTransport creates a transport that hands out the given session
// id and accepts every batch.
func NewRecordingTransport(sessionID string) *RecordingTransport {
	return &RecordingTransport{sessionID: sessionID}
}

// FailSessionStart makes subsequent StartSession calls return err (nil
// restores success).
func (r *RecordingTransport) FailSessionStart(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessionErr = err
}

// FailBatches makes subsequent SendBatch calls return err (nil restores
// success).
func (r *RecordingTransport) FailBatches(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.batchErr = err
}

// FailDurable makes only durable SendBatch calls fail, to exercise the
// teardown fallback path.
func (r *RecordingTransport) FailDurable(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.durableErrors = fail
}

// SetBatchDelay makes every SendBatch block for d before returning, to
// simulate a slow in-flight flush.
func (r *RecordingTransport) SetBatchDelay(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.batchDelay = d
}

// StartSession implements types.Transport.
func (r *RecordingTransport) StartSession(_ context.Context, init types.SessionInit) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessionCalls++
	r.sessionInits = append(r.sessionInits, init)

	if r.sessionErr != nil {
		return "", r.sessionErr
	}

	return r.sessionID, nil
}

// SendBatch implements types.Transport.
func (r *RecordingTransport) SendBatch(_ context.Context, sessionID string, events []types.Event, durable bool) error {
	r.mu.Lock()
	delay := r.batchDelay
	r.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.batchErr != nil {
		return r.batchErr
	}
	if durable && r.durableErrors {
		return context.DeadlineExceeded
	}

	copied := make([]types.Event, len(events))
	copy(copied, events)
	r.batches = append(r.batches, RecordedBatch{SessionID: sessionID, Events: copied, Durable: durable})

	return nil
}

// SessionStartCalls returns how many times StartSession was invoked.
func (r *RecordingTransport) SessionStartCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.sessionCalls
}

// SessionInits returns the recorded session-start payloads.
func (r *RecordingTransport) SessionInits() []types.SessionInit {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.SessionInit, len(r.sessionInits))
	copy(out, r.sessionInits)

	return out
}

// Batches returns the recorded successful batch deliveries.
func (r *RecordingTransport) Batches() []RecordedBatch {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RecordedBatch, len(r.batches))
	copy(out, r.batches)

	return out
}

// TotalEvents returns the total number of events across recorded batches.
func (r *RecordingTransport) TotalEvents() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, b := range r.batches {
		total += len(b.Events)
	}

	return total
}
