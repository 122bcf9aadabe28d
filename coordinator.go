package tabtrack

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"

	"github.com/eridhobffry/paguyuban-next-sub001/internal/batch"
	"github.com/eridhobffry/paguyuban-next-sub001/internal/election"
	"github.com/eridhobffry/paguyuban-next-sub001/internal/heartbeat"
	"github.com/eridhobffry/paguyuban-next-sub001/internal/hooks"
	"github.com/eridhobffry/paguyuban-next-sub001/internal/ident"
	"github.com/eridhobffry/paguyuban-next-sub001/internal/logging"
	"github.com/eridhobffry/paguyuban-next-sub001/internal/metrics"
	"github.com/eridhobffry/paguyuban-next-sub001/retry"
	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// Coordinator elects one instance of an application origin as the telemetry
// delivery leader and routes every other instance's events through it.
//
// The Coordinator handles:
//   - Leader election via an advisory token in the shared store
//   - Heartbeat publishing (leader) and silence detection (followers)
//   - A single session-start exchange shared by the whole group
//   - Event batching with threshold and timer flushes, at-least-once
//   - Cross-instance event delegation and session adoption
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - State transitions are serialized and validated
//   - Track never blocks on network delivery
//
// Fault Isolation:
// No error from coordination, election or delivery ever reaches Track
// callers. Failures are logged, counted and absorbed; a degraded instance
// keeps accepting events.
//
// Lifecycle:
//   - Create with NewCoordinator()
//   - Call Start() to elect and begin coordination
//   - Call Track() from application code paths
//   - Call Stop() for graceful shutdown with a final durable flush
type Coordinator struct {
	cfg       Config
	channel   types.Channel
	store     types.SharedStore
	transport types.Transport

	// Optional dependencies
	logger      Logger
	metrics     MetricsCollector
	hooks       *Hooks
	clock       quartz.Clock
	cache       SessionCache
	retryPolicy RetryPolicy

	// Identity and environment captured at construction. sessionInit may
	// later absorb a StartSession override; guarded by mu.
	clientID    string
	tag         string
	sessionInit SessionInit

	// Internal components
	token  *election.Token
	hbPub  *heartbeat.Publisher
	hbMon  *heartbeat.Monitor
	buffer *batch.Buffer

	// State management
	state            atomic.Int32 // State
	sessionID        atomic.Value // string
	flushInFlight    atomic.Bool
	sessionStartIF   atomic.Bool
	takeoverInFlight atomic.Bool

	// Lifecycle management
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.RWMutex
	roleMu      sync.Mutex
	unsubscribe func()
	watchStop   func()
}

// NewCoordinator creates a new Coordinator instance with the provided
// configuration and infrastructure.
//
// Returns a concrete *Coordinator struct following the "accept interfaces,
// return structs" principle. Consumers can define their own interfaces for
// testing if needed.
//
// A nil channel is a valid degraded configuration: the instance runs as a
// singleton leader with no cross-instance cooperation. A nil store is also
// valid: leadership can never be claimed, and the instance stays a follower
// (or, with a nil channel as well, a singleton leader).
//
// Parameters:
//   - cfg: Runtime configuration
//   - channel: Cross-instance pub/sub channel (may be nil)
//   - store: Shared key-value store holding the leadership token (may be nil)
//   - transport: Delivery backend for session starts and event batches
//   - opts: Optional configuration (logger, metrics, hooks, clock, cache, retry)
//
// Returns:
//   - *Coordinator: Initialized coordinator instance
//   - error: ErrTransportRequired or a validation error
//
// Example:
//
//	cfg := tabtrack.DefaultConfig()
//	cfg.Session.FirstRoute = "/pricing"
//	coord, err := tabtrack.NewCoordinator(cfg, ch, st, transport.NewHTTP(url))
func NewCoordinator(cfg Config, channel types.Channel, store types.SharedStore, transport types.Transport, opts ...Option) (*Coordinator, error) {
	if transport == nil {
		return nil, ErrTransportRequired
	}

	SetDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	// Apply options
	options := &coordinatorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Provide safe defaults for optional dependencies to avoid nil checks everywhere
	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logging.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	hooksInstance := options.hooks
	if hooksInstance == nil {
		nopHooks := hooks.NewNop()
		hooksInstance = &nopHooks
	}

	clock := options.clock
	if clock == nil {
		clock = quartz.NewReal()
	}

	retryPolicy := options.retry
	if retryPolicy == nil {
		retryPolicy = retry.NewDrop()
	}

	clientID := ident.NewClientID()

	c := &Coordinator{
		cfg:         cfg,
		channel:     channel,
		store:       store,
		transport:   transport,
		logger:      loggerInstance,
		metrics:     metricsCollector,
		hooks:       hooksInstance,
		clock:       clock,
		cache:       options.cache,
		retryPolicy: retryPolicy,
		clientID:    clientID,
		tag:         ident.ShortTag(clientID),
		buffer:      batch.New(),
	}

	c.sessionInit = SessionInit{
		FirstRoute: cfg.Session.FirstRoute,
		Referrer:   cfg.Session.Referrer,
		UTM:        ident.ParseUTM(cfg.Session.RawQuery),
		Device:     ident.DeviceClass(cfg.Session.UserAgent),
		Country:    cfg.Session.Country,
	}

	c.state.Store(int32(StateInit))
	c.sessionID.Store("")

	if store != nil {
		c.token = election.New(store, cfg.TokenKey, c.clientID)
	}
	if channel != nil {
		c.hbPub = heartbeat.NewPublisher(channel, c.clientID, cfg.HeartbeatInterval, clock)
		c.hbPub.SetMetrics(metricsCollector)
		c.hbMon = heartbeat.NewMonitor(cfg.MonitorInterval, cfg.HeartbeatTimeout, clock, c.attemptTakeover)
	}

	return c, nil
}

// Start initializes and runs the coordinator.
//
// Subscribes to the channel, runs the initial leadership claim, starts the
// heartbeat machinery for the resulting role, and launches the flush loop
// and token watcher. Start does not wait for a session id; the session-start
// exchange happens asynchronously on the leader.
//
// Parameters:
//   - ctx: Context bounding startup (also capped by Config.StartupTimeout)
//
// Returns:
//   - error: ErrDisabled, ErrAlreadyStarted, or a startup error
func (c *Coordinator) Start(ctx context.Context) error {
	if c.cfg.Disabled {
		c.logger.Info("coordinator disabled by configuration")
		return ErrDisabled
	}

	c.mu.Lock()
	if c.ctx != nil {
		c.mu.Unlock()

		return ErrAlreadyStarted
	}

	// Lifecycle context outlives the startup context.
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.mu.Unlock()

	startupCtx := ctx
	if c.cfg.StartupTimeout > 0 {
		var cancel context.CancelFunc
		startupCtx, cancel = context.WithTimeout(ctx, c.cfg.StartupTimeout)
		defer cancel()
	}

	// Step 1: Subscribe to the cross-instance channel before claiming
	// leadership so no early session broadcast is missed.
	if c.channel != nil {
		unsub, err := c.channel.Subscribe(c.handleMessage)
		if err != nil {
			return fmt.Errorf("failed to subscribe to channel: %w", err)
		}
		c.mu.Lock()
		c.unsubscribe = unsub
		c.mu.Unlock()
	}

	// Step 2: Resume a cached session from a previous run of this instance.
	if c.cache != nil {
		if cached, err := c.cache.Load(startupCtx); err != nil {
			c.logger.Warn("failed to load cached session", "error", err)
		} else if cached != "" {
			c.adoptSession(cached)
		}
	}

	// Step 3: Initial leadership claim.
	isLeader := c.claimLeadership(startupCtx)
	if isLeader {
		c.becomeLeader()
	} else {
		c.becomeFollower()
	}

	// Step 4: Watch the leadership token for external changes.
	if c.store != nil {
		updates, stop, err := c.store.Watch(c.ctx, c.cfg.TokenKey)
		if err != nil {
			c.logger.Warn("failed to watch leadership token", "error", err)
		} else {
			c.mu.Lock()
			c.watchStop = stop
			c.mu.Unlock()

			c.wg.Add(1)
			go c.watchToken(updates)
		}
	}

	// Step 5: Timer-driven flushing.
	c.wg.Add(1)
	go c.flushLoop()

	c.logger.Info("coordinator started",
		"client_id", c.clientID,
		"tag", c.tag,
		"leader", c.IsLeader(),
		"state", c.State().String(),
	)

	return nil
}

// Stop gracefully shuts down the coordinator.
//
// The leader performs a final durable flush of buffered events and releases
// the leadership token so a surviving follower can take over immediately. A
// follower with leftover buffered events hands them to the leader over the
// channel as a last resort.
//
// Safe to call multiple times - subsequent calls return ErrNotStarted.
//
// Parameters:
//   - ctx: Context for shutdown timeout (also capped by Config.ShutdownTimeout)
//
// Returns:
//   - error: Shutdown error or timeout
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.ctx == nil {
		c.mu.Unlock()

		return ErrNotStarted
	}
	if c.State() == StateShutdown {
		c.mu.Unlock()

		return ErrNotStarted
	}
	c.mu.Unlock()

	if c.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ShutdownTimeout)
		defer cancel()
	}

	wasLeader := c.IsLeader()

	// Step 1: Drain buffered events before tearing anything down.
	if wasLeader {
		c.flush(ctx, true)
	} else if c.buffer.Len() > 0 && c.channel != nil {
		// Last-ditch handoff so a surviving leader delivers them.
		events := c.buffer.Drain()
		err := c.channel.Publish(ctx, types.Message{
			Kind:     types.KindEvents,
			SenderID: c.clientID,
			Events:   events,
		})
		if err != nil {
			c.logger.Warn("failed to hand off buffered events on shutdown",
				"count", len(events), "error", err)
			c.metrics.RecordBatchDropped(len(events))
		}
	}

	c.roleMu.Lock()
	c.transitionState(c.State(), StateShutdown)

	// Step 2: Stop heartbeat machinery.
	if c.hbPub != nil {
		if err := c.hbPub.Stop(); err != nil && !errors.Is(err, heartbeat.ErrNotStarted) {
			c.logger.Error("failed to stop heartbeat publisher", "error", err)
		}
	}
	if c.hbMon != nil {
		if err := c.hbMon.Stop(); err != nil && !errors.Is(err, heartbeat.ErrNotStarted) {
			c.logger.Error("failed to stop heartbeat monitor", "error", err)
		}
	}
	c.roleMu.Unlock()

	// Step 3: Release the leadership token so takeover is immediate.
	if wasLeader && c.token != nil {
		if err := c.token.Release(ctx); err != nil {
			c.logger.Warn("failed to release leadership token", "error", err)
		}
	}

	// Step 4: Tear down subscriptions and watches, stop background loops.
	c.mu.Lock()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.watchStop != nil {
		c.watchStop()
		c.watchStop = nil
	}
	c.cancel()
	c.mu.Unlock()

	// Step 5: Wait for background goroutines with timeout.
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("coordinator stopped gracefully", "tag", c.tag)
		return nil
	case <-ctx.Done():
		c.logger.Error("shutdown timeout exceeded, some goroutines may still be running")
		return ctx.Err()
	}
}

// Track records a telemetry event.
//
// Track never returns an error and never blocks on delivery: the leader
// buffers the event for the next flush, a follower forwards it to the
// leader over the channel. Events with a zero CreatedAt are stamped with
// the current time.
//
// Calling Track on a stopped or disabled coordinator silently drops the
// event.
//
// Parameters:
//   - ev: Event to record
func (c *Coordinator) Track(ev Event) {
	if c.cfg.Disabled {
		return
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = c.clock.Now().UTC()
	}

	state := c.State()
	if state == StateShutdown {
		c.metrics.RecordEventTracked("dropped")
		return
	}

	// Leaders buffer locally. So do instances with no channel to forward
	// on, and instances not yet started: their events deliver once a flush
	// becomes possible.
	if state.IsLeader() || c.channel == nil || state == StateInit {
		n := c.buffer.Append(ev)
		c.metrics.RecordEventTracked("buffered")
		if state.IsLeader() && n >= c.cfg.MaxBatchSize {
			go c.flush(c.lifecycleCtx(), false)
		}
		return
	}

	// Followers delegate to the leader.
	err := c.channel.Publish(c.lifecycleCtx(), types.Message{
		Kind:     types.KindEvents,
		SenderID: c.clientID,
		Events:   []types.Event{ev},
	})
	if err != nil {
		// Keep the event; it delivers if this instance is ever promoted.
		c.buffer.Append(ev)
		c.metrics.RecordEventTracked("buffered")
		c.logger.Debug("failed to forward event, buffered locally", "error", err)
		return
	}
	c.metrics.RecordMessage(types.KindEvents, true)
	c.metrics.RecordEventTracked("forwarded")
}

// Flush triggers an immediate delivery attempt of buffered events.
//
// Only the leader delivers; calling Flush on a follower is a no-op since
// followers forward events as they arrive. Returns ErrNotStarted if the
// coordinator is not running.
//
// Parameters:
//   - ctx: Context for the delivery attempt
//
// Returns:
//   - error: ErrNotStarted, nil otherwise (delivery failures are absorbed)
func (c *Coordinator) Flush(ctx context.Context) error {
	if c.cfg.Disabled {
		return nil
	}

	state := c.State()
	if state == StateInit || state == StateShutdown {
		return ErrNotStarted
	}

	if state.IsLeader() {
		c.flush(ctx, false)
	}

	return nil
}

// StartSession ensures a session exists and returns its id.
//
// On the leader this runs the session-start exchange if it has not happened
// yet. On a follower it asks the leader to re-broadcast the current session.
// Delivery failures are absorbed: the returned id is empty if no session is
// known yet, with a nil error.
//
// An optional override fills in environment signals on top of those captured
// at construction; non-zero override fields win. The override is ignored once
// a session id is known.
//
// Parameters:
//   - ctx: Context for the exchange
//   - override: Optional partial SessionInit merged over the construction-time
//     environment
//
// Returns:
//   - string: Session id ("" if not yet known)
//   - error: ErrNotStarted if the coordinator is not running
func (c *Coordinator) StartSession(ctx context.Context, override ...SessionInit) (string, error) {
	if c.cfg.Disabled {
		return "", nil
	}

	state := c.State()
	if state == StateInit || state == StateShutdown {
		return "", ErrNotStarted
	}

	if sid := c.SessionID(); sid != "" {
		return sid, nil
	}

	if len(override) > 0 {
		c.mu.Lock()
		c.sessionInit = override[0].Merge(c.sessionInit)
		c.mu.Unlock()
	}

	if state.IsLeader() {
		c.ensureSession(ctx)
		return c.SessionID(), nil
	}

	// Follower: nudge the leader.
	if c.channel != nil {
		err := c.channel.Publish(ctx, types.Message{
			Kind:     types.KindRequestSession,
			SenderID: c.clientID,
		})
		if err != nil {
			c.logger.Debug("failed to request session from leader", "error", err)
		} else {
			c.metrics.RecordMessage(types.KindRequestSession, true)
		}
	}

	return c.SessionID(), nil
}

// SessionID returns the current session id, or "" if none is known yet.
func (c *Coordinator) SessionID() string {
	if sid, ok := c.sessionID.Load().(string); ok {
		return sid
	}

	return ""
}

// ClientID returns this instance's unique client id.
func (c *Coordinator) ClientID() string {
	return c.clientID
}

// IsLeader returns true if this instance currently believes it is the leader.
func (c *Coordinator) IsLeader() bool {
	return c.State().IsLeader()
}

// State returns the current instance state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// PendingEvents returns the number of locally buffered events.
func (c *Coordinator) PendingEvents() int {
	return c.buffer.Len()
}

// WaitState waits for the coordinator to reach the expected state within the
// timeout period.
//
// The method returns a read-only channel that receives exactly one value:
//   - nil if the expected state is reached within the timeout
//   - context.DeadlineExceeded if the timeout expires first
//
// The channel is closed after sending the result, allowing safe use in
// select statements.
//
// Parameters:
//   - expected: The state to wait for
//   - timeout: Maximum duration to wait
//
// Returns:
//   - <-chan error: A channel that receives the result
//
// Example:
//
//	if err := <-coord.WaitState(tabtrack.StateLeaderReady, 5*time.Second); err != nil {
//	    log.Printf("never became ready: %v", err)
//	}
func (c *Coordinator) WaitState(expected State, timeout time.Duration) <-chan error {
	ch := make(chan error, 1)

	go func() {
		defer close(ch)

		if c.State() == expected {
			ch <- nil
			return
		}

		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()

		timer := time.NewTimer(timeout)
		defer timer.Stop()

		for {
			select {
			case <-ticker.C:
				if c.State() == expected {
					ch <- nil
					return
				}
			case <-timer.C:
				ch <- context.DeadlineExceeded
				return
			}
		}
	}()

	return ch
}

// lifecycleCtx returns the coordinator's lifecycle context, or a background
// context before Start.
func (c *Coordinator) lifecycleCtx() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.ctx != nil {
		return c.ctx
	}

	return context.Background()
}

// claimLeadership runs one advisory claim attempt. Errors are absorbed: a
// failing or absent store means this instance stays a follower, except in
// the fully degraded case (no channel either) where it must act as a
// singleton leader to deliver anything at all.
func (c *Coordinator) claimLeadership(ctx context.Context) bool {
	if c.token == nil {
		return c.channel == nil
	}

	won, err := c.token.Claim(ctx)
	if err != nil {
		c.logger.Warn("leadership claim failed, remaining follower", "error", err)
		if c.channel == nil {
			// No store and no channel would be singleton mode; a failing
			// store with no channel still means nobody else can deliver.
			return true
		}
		return false
	}

	return won
}

// becomeLeader promotes this instance: start heartbeats, stop monitoring,
// kick off the session-start exchange.
func (c *Coordinator) becomeLeader() {
	c.roleMu.Lock()
	defer c.roleMu.Unlock()

	state := c.State()
	if state.IsLeader() || state == StateShutdown {
		return
	}

	to := StateLeader
	if c.SessionID() != "" {
		to = StateLeaderReady
	}
	c.transitionState(state, to)

	c.metrics.RecordLeadershipChange(true)
	c.runHook(func(ctx context.Context) error {
		if c.hooks.OnLeadershipChanged != nil {
			return c.hooks.OnLeadershipChanged(ctx, true)
		}
		return nil
	}, "leadership change hook error")

	if c.hbMon != nil {
		if err := c.hbMon.Stop(); err != nil && !errors.Is(err, heartbeat.ErrNotStarted) {
			c.logger.Error("failed to stop heartbeat monitor", "error", err)
		}
	}
	if c.hbPub != nil {
		if err := c.hbPub.Start(c.lifecycleCtx()); err != nil && !errors.Is(err, heartbeat.ErrAlreadyStarted) {
			c.logger.Error("failed to start heartbeat publisher", "error", err)
		}
	}

	c.logger.Info("became leader", "tag", c.tag)

	if sid := c.SessionID(); sid != "" {
		// Let followers adopt the session we already hold.
		c.broadcastSession(c.lifecycleCtx(), sid)
	} else {
		go c.ensureSession(c.lifecycleCtx())
	}
}

// becomeFollower demotes this instance: stop heartbeats, start monitoring,
// ask the leader for the current session.
func (c *Coordinator) becomeFollower() {
	c.roleMu.Lock()
	defer c.roleMu.Unlock()

	state := c.State()
	if state == StateShutdown || state == StateFollower || state == StateFollowerReady {
		return
	}

	wasLeader := state.IsLeader()

	to := StateFollower
	if c.SessionID() != "" {
		to = StateFollowerReady
	}
	c.transitionState(state, to)

	if wasLeader {
		c.metrics.RecordLeadershipChange(false)
		c.runHook(func(ctx context.Context) error {
			if c.hooks.OnLeadershipChanged != nil {
				return c.hooks.OnLeadershipChanged(ctx, false)
			}
			return nil
		}, "leadership change hook error")
		c.logger.Info("stepped down from leadership", "tag", c.tag)
	}

	if c.hbPub != nil {
		if err := c.hbPub.Stop(); err != nil && !errors.Is(err, heartbeat.ErrNotStarted) {
			c.logger.Error("failed to stop heartbeat publisher", "error", err)
		}
	}
	if c.hbMon != nil {
		if err := c.hbMon.Start(c.lifecycleCtx()); err != nil && !errors.Is(err, heartbeat.ErrAlreadyStarted) {
			c.logger.Error("failed to start heartbeat monitor", "error", err)
		}
	}

	// Ask for the session we may have missed.
	if c.channel != nil && c.SessionID() == "" {
		err := c.channel.Publish(c.lifecycleCtx(), types.Message{
			Kind:     types.KindRequestSession,
			SenderID: c.clientID,
		})
		if err != nil {
			c.logger.Debug("failed to request session", "error", err)
		} else {
			c.metrics.RecordMessage(types.KindRequestSession, true)
		}
	}
}

// attemptTakeover fires from the heartbeat monitor when the leader has been
// silent past the timeout. It keeps firing each expired check, so failed
// claims retry indefinitely without their own backoff loop.
//
// The claim itself runs off the monitor goroutine: promotion stops the
// monitor, which must not happen from inside its own loop, and a slow store
// must not stall the ticker.
func (c *Coordinator) attemptTakeover() {
	state := c.State()
	if state.IsLeader() || state == StateShutdown {
		return
	}
	if c.token == nil {
		return
	}
	if !c.takeoverInFlight.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer c.takeoverInFlight.Store(false)

		// Force-claim: the presumed-dead leader's id is still in the store,
		// so a read-first claim would defer to it forever.
		won, err := c.token.Takeover(c.lifecycleCtx())
		if err != nil {
			c.logger.Debug("takeover claim failed", "error", err)
			return
		}
		if won {
			c.logger.Info("leader silent past timeout, taking over",
				"tag", c.tag, "timeout", c.cfg.HeartbeatTimeout)
			c.becomeLeader()
		}
	}()
}

// watchToken reacts to external changes of the leadership token.
func (c *Coordinator) watchToken(updates <-chan types.KeyUpdate) {
	defer c.wg.Done()

	for update := range updates {
		if c.State() == StateShutdown {
			return
		}

		switch {
		case update.Deleted:
			// The leader released the token (clean shutdown). Claim it
			// immediately instead of waiting out the silence timeout.
			if !c.IsLeader() {
				c.attemptTakeoverNow()
			}
		case update.Value == c.clientID:
			if !c.IsLeader() {
				c.becomeLeader()
			}
		default:
			// Someone else holds the token. A leader observing this lost a
			// write race; verify against the store and step down if beaten.
			if c.IsLeader() {
				c.reconcileLeadership()
			}
		}
	}
}

// attemptTakeoverNow claims the token outside the monitor's silence check.
func (c *Coordinator) attemptTakeoverNow() {
	if c.token == nil {
		return
	}

	won, err := c.token.Takeover(c.lifecycleCtx())
	if err != nil {
		c.logger.Debug("takeover claim failed", "error", err)
		return
	}
	if won {
		c.logger.Info("leadership token released, taking over", "tag", c.tag)
		c.becomeLeader()
	}
}

// reconcileLeadership re-reads the token and steps down if another instance
// won the write race.
func (c *Coordinator) reconcileLeadership() {
	stillLeader, err := c.token.Verify(c.lifecycleCtx())
	if err != nil {
		c.logger.Warn("failed to verify leadership token", "error", err)
		return
	}
	if !stillLeader && c.IsLeader() {
		c.becomeFollower()
	}
}

// ensureSession runs the session-start exchange at most once concurrently.
// A cached or adopted session short-circuits; a transport failure is logged
// and absorbed, leaving the next flush or StartSession call to retry.
func (c *Coordinator) ensureSession(ctx context.Context) {
	if c.SessionID() != "" {
		return
	}
	if !c.sessionStartIF.CompareAndSwap(false, true) {
		return
	}
	defer c.sessionStartIF.Store(false)

	// Re-check after winning the flight: a broadcast may have landed.
	if c.SessionID() != "" {
		return
	}

	c.mu.RLock()
	init := c.sessionInit
	c.mu.RUnlock()

	sid, err := c.transport.StartSession(ctx, init)
	c.metrics.RecordSessionStart(err == nil)
	if err != nil {
		c.logger.Warn("session-start exchange failed", "error", err)
		c.runHook(func(hctx context.Context) error {
			if c.hooks.OnError != nil {
				return c.hooks.OnError(hctx, err)
			}
			return nil
		}, "error hook error")
		return
	}

	c.adoptSession(sid)
	c.broadcastSession(ctx, sid)
}

// adoptSession installs a session id exactly once. Later ids are ignored:
// the first session a group member learns is the group's session for the
// rest of its life.
func (c *Coordinator) adoptSession(sid string) {
	if sid == "" {
		return
	}
	if !c.sessionID.CompareAndSwap("", sid) {
		return
	}

	// Promote Follower→FollowerReady / Leader→LeaderReady.
	c.roleMu.Lock()
	switch c.State() {
	case StateFollower:
		c.transitionState(StateFollower, StateFollowerReady)
	case StateLeader:
		c.transitionState(StateLeader, StateLeaderReady)
	}
	c.roleMu.Unlock()

	if c.cache != nil {
		if err := c.cache.Store(c.lifecycleCtx(), sid); err != nil {
			c.logger.Warn("failed to cache session id", "error", err)
		}
	}

	c.logger.Info("session adopted", "session_id", sid, "tag", c.tag)

	c.runHook(func(ctx context.Context) error {
		if c.hooks.OnSessionStarted != nil {
			return c.hooks.OnSessionStarted(ctx, sid)
		}
		return nil
	}, "session started hook error")
}

// broadcastSession shares the session id with every other instance.
func (c *Coordinator) broadcastSession(ctx context.Context, sid string) {
	if c.channel == nil {
		return
	}

	err := c.channel.Publish(ctx, types.Message{
		Kind:      types.KindSession,
		SenderID:  c.clientID,
		SessionID: sid,
	})
	if err != nil {
		c.logger.Warn("failed to broadcast session", "error", err)
		return
	}
	c.metrics.RecordMessage(types.KindSession, true)
}

// handleMessage dispatches one channel message. Runs on the channel's
// delivery goroutine, so everything slow is handed off.
func (c *Coordinator) handleMessage(msg Message) {
	if msg.SenderID == c.clientID {
		return
	}
	c.metrics.RecordMessage(msg.Kind, false)

	switch msg.Kind {
	case types.KindSession:
		c.adoptSession(msg.SessionID)

	case types.KindRequestSession:
		if c.IsLeader() {
			if sid := c.SessionID(); sid != "" {
				c.broadcastSession(c.lifecycleCtx(), sid)
			} else {
				go c.ensureSession(c.lifecycleCtx())
			}
		}

	case types.KindEvents:
		if !c.IsLeader() {
			return
		}
		n := c.buffer.AppendAll(msg.Events)
		if n >= c.cfg.MaxBatchSize {
			go c.flush(c.lifecycleCtx(), false)
		}

	case types.KindHeartbeat:
		if c.hbMon != nil {
			c.hbMon.Observe(msg.SentAt)
		}
		// Two instances both believe they lead: reconcile via the store.
		if c.IsLeader() {
			go c.reconcileLeadership()
		}
	}
}

// flushLoop delivers buffered events on the flush interval.
func (c *Coordinator) flushLoop() {
	defer c.wg.Done()

	ticker := c.clock.NewTicker(c.cfg.FlushInterval)
	defer ticker.Stop()

	ctx := c.lifecycleCtx()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.IsLeader() && c.buffer.Len() > 0 {
				c.flush(ctx, false)
			}
		}
	}
}

// flush drains the buffer and delivers one batch. At most one flush runs at
// a time; overlapping triggers are skipped, their events staying buffered
// for the next attempt. A failed delivery hands the batch to the retry
// policy, which decides what is requeued and what is dropped.
func (c *Coordinator) flush(ctx context.Context, durable bool) {
	if !c.flushInFlight.CompareAndSwap(false, true) {
		c.metrics.RecordFlush("skipped", 0)
		return
	}
	defer c.flushInFlight.Store(false)

	events := c.buffer.Drain()
	if len(events) == 0 {
		return
	}

	sid := c.SessionID()
	if sid == "" {
		// No session yet: put the batch back and get one started.
		c.buffer.Requeue(events)
		go c.ensureSession(c.lifecycleCtx())
		c.metrics.RecordFlush("skipped", len(events))
		return
	}

	err := c.transport.SendBatch(ctx, sid, events, durable)
	if err != nil && durable {
		// Durable path failed; fall back to a normal request.
		err = c.transport.SendBatch(ctx, sid, events, false)
	}

	if err == nil {
		c.metrics.RecordFlush("ok", len(events))
		c.runHook(func(hctx context.Context) error {
			if c.hooks.OnFlush != nil {
				return c.hooks.OnFlush(hctx, len(events), nil)
			}
			return nil
		}, "flush hook error")
		return
	}

	c.metrics.RecordFlush("failed", len(events))
	c.logger.Warn("batch delivery failed",
		"count", len(events), "session_id", sid, "error", err)

	kept := c.retryPolicy.OnDeliveryFailure(events, c.buffer.Len())
	if len(kept) > 0 {
		c.buffer.Requeue(kept)
	}
	if dropped := len(events) - len(kept); dropped > 0 {
		c.metrics.RecordBatchDropped(dropped)
	}

	flushErr := err
	c.runHook(func(hctx context.Context) error {
		if c.hooks.OnFlush != nil {
			return c.hooks.OnFlush(hctx, len(events), flushErr)
		}
		return nil
	}, "flush hook error")
	c.runHook(func(hctx context.Context) error {
		if c.hooks.OnError != nil {
			return c.hooks.OnError(hctx, flushErr)
		}
		return nil
	}, "error hook error")
}

// transitionState transitions to a new state and triggers hooks.
// Callers hold roleMu.
func (c *Coordinator) transitionState(from, to State) {
	if from == to {
		return
	}
	if !isValidTransition(from, to) {
		c.logger.Error("invalid state transition attempted",
			"from", from.String(),
			"to", to.String(),
		)

		return
	}

	c.state.Store(int32(to)) //nolint:gosec // State values are controlled enum

	c.logger.Info("state transition",
		"from", from.String(),
		"to", to.String(),
		"tag", c.tag,
	)

	c.metrics.RecordStateTransition(from, to)

	c.runHook(func(ctx context.Context) error {
		if c.hooks.OnStateChanged != nil {
			return c.hooks.OnStateChanged(ctx, from, to)
		}
		return nil
	}, "state change hook error")
}

// isValidTransition validates that a state transition is allowed.
func isValidTransition(from, to State) bool {
	validTransitions := map[State][]State{
		StateInit:          {StateFollower, StateFollowerReady, StateLeader, StateLeaderReady, StateShutdown},
		StateFollower:      {StateFollowerReady, StateLeader, StateLeaderReady, StateShutdown},
		StateFollowerReady: {StateLeaderReady, StateShutdown},
		StateLeader:        {StateLeaderReady, StateFollower, StateFollowerReady, StateShutdown},
		StateLeaderReady:   {StateFollowerReady, StateShutdown},
		StateShutdown:      {}, // Terminal state - no transitions allowed
	}

	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}

// runHook invokes a hook callback in the background so hooks never block
// coordination.
func (c *Coordinator) runHook(fn func(context.Context) error, errMsg string) {
	go func() {
		if err := fn(c.lifecycleCtx()); err != nil {
			c.logger.Error(errMsg, "error", err)
		}
	}()
}
