package tabtrack

import "github.com/coder/quartz"

// Option configures a Coordinator with optional dependencies.
type Option func(*coordinatorOptions)

// coordinatorOptions holds optional Coordinator configuration.
type coordinatorOptions struct {
	logger  Logger
	metrics MetricsCollector
	hooks   *Hooks
	clock   quartz.Clock
	cache   SessionCache
	retry   RetryPolicy
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with slog via logging.NewSlog)
//
// Returns:
//   - Option: Functional option for NewCoordinator
func WithLogger(logger Logger) Option {
	return func(o *coordinatorOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewCoordinator
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *coordinatorOptions) {
		o.metrics = metrics
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewCoordinator
//
// Example:
//
//	hooks := &tabtrack.Hooks{
//	    OnSessionStarted: func(ctx context.Context, sessionID string) error {
//	        return recordSession(sessionID)
//	    },
//	}
//	coord, err := tabtrack.NewCoordinator(cfg, ch, st, tr, tabtrack.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *coordinatorOptions) {
		o.hooks = hooks
	}
}

// WithClock sets the clock used for heartbeats, monitoring and flush timers.
// Tests inject quartz.NewMock to control time; production uses the real
// clock by default.
//
// Parameters:
//   - clock: Clock implementation
//
// Returns:
//   - Option: Functional option for NewCoordinator
func WithClock(clock quartz.Clock) Option {
	return func(o *coordinatorOptions) {
		o.clock = clock
	}
}

// WithSessionCache sets an instance-local durable session cache so a
// restarted instance resumes its previous session instead of starting a
// new one.
//
// Parameters:
//   - cache: SessionCache implementation (e.g. sessioncache.NewSQLite)
//
// Returns:
//   - Option: Functional option for NewCoordinator
func WithSessionCache(cache SessionCache) Option {
	return func(o *coordinatorOptions) {
		o.cache = cache
	}
}

// WithRetryPolicy sets the policy applied to a batch whose delivery failed.
// The default drops failed batches; retry.NewBoundedQueue requeues them up
// to a buffer cap.
//
// Parameters:
//   - policy: RetryPolicy implementation
//
// Returns:
//   - Option: Functional option for NewCoordinator
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *coordinatorOptions) {
		o.retry = policy
	}
}
