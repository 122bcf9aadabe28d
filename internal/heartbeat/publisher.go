package heartbeat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// Common errors for heartbeat operations.
var (
	ErrNotStarted     = errors.New("not started")
	ErrAlreadyStarted = errors.New("already started")
	ErrNoClientID     = errors.New("client id not set")
)

// Publisher broadcasts periodic leader heartbeats on the cross-instance
// channel.
//
// Only the leader runs a Publisher. Followers feed the carried timestamps
// into a Monitor to detect leader death. Heartbeats are ephemeral message
// traffic; nothing is persisted and publish failures are recorded but never
// abort the loop.
type Publisher struct {
	ch       types.Channel
	clientID string
	interval time.Duration
	clock    quartz.Clock
	metrics  types.MetricsCollector

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	ticker  *quartz.Ticker
}

// NewPublisher creates a heartbeat publisher.
//
// Parameters:
//   - ch: Cross-instance channel
//   - clientID: This instance's client id, carried as the sender
//   - interval: Heartbeat interval (design default 10s)
//   - clock: Clock for timestamps and the ticker
func NewPublisher(ch types.Channel, clientID string, interval time.Duration, clock quartz.Clock) *Publisher {
	return &Publisher{
		ch:       ch,
		clientID: clientID,
		interval: interval,
		clock:    clock,
	}
}

// SetMetrics sets the metrics collector. Optional; must be called before Start.
func (p *Publisher) SetMetrics(metrics types.MetricsCollector) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.metrics = metrics
}

// Start publishes an immediate heartbeat and then one per interval until
// Stop is called.
//
// Returns:
//   - error: ErrAlreadyStarted if running, ErrNoClientID if no client id
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}
	if p.clientID == "" {
		return ErrNoClientID
	}

	p.started = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.ticker = p.clock.NewTicker(p.interval)

	metrics := p.metrics
	p.publish(ctx, metrics)

	go p.publishLoop(ctx, metrics)

	return nil
}

// Stop halts heartbeat publishing and waits for the loop to exit.
//
// Returns:
//   - error: ErrNotStarted if not running
func (p *Publisher) Stop() error {
	p.mu.Lock()

	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}

	p.ticker.Stop()
	close(p.stopCh)
	p.started = false

	doneCh := p.doneCh
	p.mu.Unlock()

	<-doneCh

	return nil
}

// IsStarted reports whether the publisher is currently running.
func (p *Publisher) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.started
}

func (p *Publisher) publishLoop(ctx context.Context, metrics types.MetricsCollector) {
	defer close(p.doneCh)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-p.ticker.C:
			p.publish(ctx, metrics)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, metrics types.MetricsCollector) {
	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.ch.Publish(publishCtx, types.Message{
		Kind:     types.KindHeartbeat,
		SenderID: p.clientID,
		SentAt:   p.clock.Now(),
	})

	if metrics != nil {
		metrics.RecordHeartbeat(err == nil)
	}
}
