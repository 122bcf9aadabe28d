package tabtrack

import (
	"fmt"
	"time"
)

// SessionConfig carries the environment signals captured once at coordinator
// construction and sent with the session-start exchange.
type SessionConfig struct {
	// FirstRoute is the first route this instance rendered.
	FirstRoute string `yaml:"firstRoute"`

	// Referrer is the document referrer, if any.
	Referrer string `yaml:"referrer"`

	// RawQuery is the raw URL query string; utm_* parameters are extracted
	// from it and everything else is ignored.
	RawQuery string `yaml:"rawQuery"`

	// UserAgent is used to infer a coarse device class (mobile/tablet/desktop).
	UserAgent string `yaml:"userAgent"`

	// Country is an optional country hint passed through unchanged.
	Country string `yaml:"country"`
}

// ============================================================================
// Timing Configuration Model
// ============================================================================
//
// Three intervals govern leader failure detection:
//
//   - HeartbeatInterval (10s): how often the leader broadcasts liveness.
//   - MonitorInterval (5s): how often a follower checks for leader silence.
//     Clamped to HeartbeatInterval so checks are never slower than beats.
//   - HeartbeatTimeout (30s): silence threshold; after this a follower
//     attempts to claim leadership, and keeps attempting on every expired
//     check until it wins or hears a fresh heartbeat.
//
// Worst-case failover is therefore HeartbeatTimeout + MonitorInterval after
// the last heartbeat. Election is advisory (last-writer-wins token with a
// verify read), so concurrent claimers converge on the next verify rather
// than serializing.
//
// Two knobs govern batching:
//
//   - MaxBatchSize (20): a buffer reaching this size flushes immediately.
//   - FlushInterval (5s): a non-empty buffer flushes at least this often.
//
// Constraint hierarchy:
//   HeartbeatTimeout >= 2 * HeartbeatInterval
//   MonitorInterval  <= HeartbeatInterval (clamped by SetDefaults)
//
// ============================================================================

// Config is the configuration for the Coordinator.
//
// All duration fields accept standard Go duration values.
type Config struct {
	// Disabled turns the whole subsystem off. Start returns ErrDisabled and
	// Track/Flush become silent no-ops.
	Disabled bool `yaml:"disabled"`

	// HeartbeatInterval is how often the leader broadcasts heartbeats.
	// Recommended: 10 seconds.
	HeartbeatInterval time.Duration `yaml:"heartbeatInterval"`

	// MonitorInterval is how often a follower checks for leader silence.
	// Values above HeartbeatInterval are clamped down to it.
	// Recommended: 5 seconds.
	MonitorInterval time.Duration `yaml:"monitorInterval"`

	// HeartbeatTimeout is how long the leader may stay silent before a
	// follower attempts to take over. Must be at least 2x HeartbeatInterval.
	// Recommended: 30 seconds.
	HeartbeatTimeout time.Duration `yaml:"heartbeatTimeout"`

	// FlushInterval is the maximum time buffered events wait before being
	// delivered, regardless of batch size. Recommended: 5 seconds.
	FlushInterval time.Duration `yaml:"flushInterval"`

	// MaxBatchSize is the buffer size that triggers an immediate flush.
	// Recommended: 20.
	MaxBatchSize int `yaml:"maxBatchSize"`

	// TokenKey is the shared-store key holding the leadership token.
	TokenKey string `yaml:"tokenKey"`

	// StartupTimeout bounds Start: initial election, channel subscription
	// and watcher setup. Recommended: 10 seconds.
	StartupTimeout time.Duration `yaml:"startupTimeout"`

	// ShutdownTimeout bounds Stop, including the final durable flush.
	// Recommended: 5 seconds.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// Session carries the environment signals for the session-start exchange.
	Session SessionConfig `yaml:"session"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 10 * time.Second,
		MonitorInterval:   5 * time.Second,
		HeartbeatTimeout:  30 * time.Second,
		FlushInterval:     5 * time.Second,
		MaxBatchSize:      20,
		TokenKey:          "leader",
		StartupTimeout:    10 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if cfg.MonitorInterval == 0 {
		cfg.MonitorInterval = defaults.MonitorInterval
	}
	// The monitor can never usefully check slower than the leader beats.
	if cfg.MonitorInterval > cfg.HeartbeatInterval {
		cfg.MonitorInterval = cfg.HeartbeatInterval
	}
	if cfg.HeartbeatTimeout == 0 {
		cfg.HeartbeatTimeout = defaults.HeartbeatTimeout
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = defaults.FlushInterval
	}
	if cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = defaults.MaxBatchSize
	}
	if cfg.TokenKey == "" {
		cfg.TokenKey = defaults.TokenKey
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = defaults.StartupTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
}

// Validate checks configuration constraints and returns an error for invalid
// values.
//
// Hard Validation Rules:
//   - HeartbeatTimeout >= 2 * HeartbeatInterval (allow one missed heartbeat)
//   - MonitorInterval > 0 and <= HeartbeatTimeout
//   - FlushInterval > 0
//   - MaxBatchSize > 0
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.HeartbeatInterval <= 0 {
		return fmt.Errorf("HeartbeatInterval must be > 0, got %v", cfg.HeartbeatInterval)
	}

	if cfg.HeartbeatTimeout < 2*cfg.HeartbeatInterval {
		return fmt.Errorf(
			"HeartbeatTimeout (%v) must be >= 2*HeartbeatInterval (%v) to allow one missed heartbeat",
			cfg.HeartbeatTimeout, cfg.HeartbeatInterval,
		)
	}

	if cfg.MonitorInterval <= 0 {
		return fmt.Errorf("MonitorInterval must be > 0, got %v", cfg.MonitorInterval)
	}

	if cfg.MonitorInterval > cfg.HeartbeatTimeout {
		return fmt.Errorf(
			"MonitorInterval (%v) must be <= HeartbeatTimeout (%v)",
			cfg.MonitorInterval, cfg.HeartbeatTimeout,
		)
	}

	if cfg.FlushInterval <= 0 {
		return fmt.Errorf("FlushInterval must be > 0, got %v", cfg.FlushInterval)
	}

	if cfg.MaxBatchSize <= 0 {
		return fmt.Errorf("MaxBatchSize must be > 0, got %d", cfg.MaxBatchSize)
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for
// non-recommended values.
//
// This is called after Validate() in NewCoordinator() to provide operator
// guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.HeartbeatTimeout < 3*cfg.HeartbeatInterval {
		logger.Warn(
			"HeartbeatTimeout is below recommended minimum, transient stalls may trigger takeover",
			"heartbeatTimeout", cfg.HeartbeatTimeout,
			"heartbeatInterval", cfg.HeartbeatInterval,
			"recommended", 3*cfg.HeartbeatInterval,
		)
	}

	if cfg.MaxBatchSize > 500 {
		logger.Warn(
			"MaxBatchSize is very large, batches may exceed collector payload limits",
			"maxBatchSize", cfg.MaxBatchSize,
			"recommended", "20-100",
		)
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Test timings are 10-100x faster than production defaults to enable rapid
// iteration without sacrificing test coverage. Use DefaultConfig() for
// production deployments.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := tabtrack.TestConfig()
//	coord, err := tabtrack.NewCoordinator(cfg, ch, st, tr)
func TestConfig() Config {
	cfg := DefaultConfig()

	// Fast timings for test execution (10-100x faster)
	cfg.HeartbeatInterval = 100 * time.Millisecond // 100x faster
	cfg.MonitorInterval = 50 * time.Millisecond    // 100x faster
	cfg.HeartbeatTimeout = 300 * time.Millisecond  // 100x faster
	cfg.FlushInterval = 200 * time.Millisecond     // 25x faster
	cfg.StartupTimeout = 5 * time.Second           // 2x faster
	cfg.ShutdownTimeout = 2 * time.Second

	return cfg
}
