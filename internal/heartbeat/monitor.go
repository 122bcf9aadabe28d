package heartbeat

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Monitor watches leader heartbeats on behalf of a follower and invokes a
// callback once the leader has been silent longer than the timeout.
//
// The check runs on its own, shorter interval so a dead leader is noticed
// within timeout + interval. The callback typically attempts a leadership
// claim; it keeps firing on every subsequent expired tick until the follower
// either wins or sees a fresh heartbeat, so claims are retried indefinitely
// and silently.
type Monitor struct {
	interval time.Duration
	timeout  time.Duration
	clock    quartz.Clock
	onSilent func()

	mu       sync.Mutex
	lastSeen time.Time
	started  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	ticker   *quartz.Ticker
}

// NewMonitor creates a heartbeat monitor.
//
// Parameters:
//   - interval: Check interval (design default 5s, at most the heartbeat interval)
//   - timeout: Silence threshold before onSilent fires (design default 30s)
//   - clock: Clock for gap measurement and the ticker
//   - onSilent: Invoked on every check that finds the leader silent past timeout
func NewMonitor(interval, timeout time.Duration, clock quartz.Clock, onSilent func()) *Monitor {
	return &Monitor{
		interval: interval,
		timeout:  timeout,
		clock:    clock,
		onSilent: onSilent,
	}
}

// Observe records a heartbeat timestamp received from the leader.
func (m *Monitor) Observe(sentAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sentAt.After(m.lastSeen) {
		m.lastSeen = sentAt
	}
}

// Start begins monitoring. The silence window starts from "now", so a fresh
// follower grants the leader a full timeout before attempting a takeover.
//
// Returns:
//   - error: ErrAlreadyStarted if running
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}

	m.started = true
	m.lastSeen = m.clock.Now()
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	m.ticker = m.clock.NewTicker(m.interval)

	go m.watchLoop(ctx)

	return nil
}

// Stop halts monitoring and waits for the loop to exit.
//
// Returns:
//   - error: ErrNotStarted if not running
func (m *Monitor) Stop() error {
	m.mu.Lock()

	if !m.started {
		m.mu.Unlock()
		return ErrNotStarted
	}

	m.ticker.Stop()
	close(m.stopCh)
	m.started = false

	doneCh := m.doneCh
	m.mu.Unlock()

	<-doneCh

	return nil
}

// IsStarted reports whether the monitor is currently running.
func (m *Monitor) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.started
}

func (m *Monitor) watchLoop(ctx context.Context) {
	defer close(m.doneCh)

	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-m.ticker.C:
			m.mu.Lock()
			silent := m.clock.Since(m.lastSeen) > m.timeout
			m.mu.Unlock()

			if silent {
				m.onSilent()
			}
		}
	}
}
