package tabtrack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Disabled)
	require.Equal(t, 10*time.Second, cfg.HeartbeatInterval)
	require.Equal(t, 5*time.Second, cfg.MonitorInterval)
	require.Equal(t, 30*time.Second, cfg.HeartbeatTimeout)
	require.Equal(t, 5*time.Second, cfg.FlushInterval)
	require.Equal(t, 20, cfg.MaxBatchSize)
	require.Equal(t, "leader", cfg.TokenKey)

	require.NoError(t, cfg.Validate())
}

func TestSetDefaultsFillsZeroValues(t *testing.T) {
	cfg := Config{}
	SetDefaults(&cfg)

	require.Equal(t, DefaultConfig(), cfg)
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		HeartbeatInterval: 2 * time.Second,
		MaxBatchSize:      50,
		TokenKey:          "custom-leader",
	}
	SetDefaults(&cfg)

	require.Equal(t, 2*time.Second, cfg.HeartbeatInterval)
	require.Equal(t, 50, cfg.MaxBatchSize)
	require.Equal(t, "custom-leader", cfg.TokenKey)
}

func TestSetDefaultsClampsMonitorInterval(t *testing.T) {
	cfg := Config{
		HeartbeatInterval: 2 * time.Second,
		MonitorInterval:   10 * time.Second,
	}
	SetDefaults(&cfg)

	// Checking slower than the leader beats would be pointless.
	require.Equal(t, 2*time.Second, cfg.MonitorInterval)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "timeout below two heartbeats",
			mutate:  func(cfg *Config) { cfg.HeartbeatTimeout = cfg.HeartbeatInterval },
			wantErr: "HeartbeatTimeout",
		},
		{
			name:    "zero heartbeat interval",
			mutate:  func(cfg *Config) { cfg.HeartbeatInterval = 0 },
			wantErr: "HeartbeatInterval",
		},
		{
			name:    "negative monitor interval",
			mutate:  func(cfg *Config) { cfg.MonitorInterval = -time.Second },
			wantErr: "MonitorInterval",
		},
		{
			name:    "zero flush interval",
			mutate:  func(cfg *Config) { cfg.FlushInterval = 0 },
			wantErr: "FlushInterval",
		},
		{
			name:    "zero batch size",
			mutate:  func(cfg *Config) { cfg.MaxBatchSize = 0 },
			wantErr: "MaxBatchSize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTestConfigIsValid(t *testing.T) {
	cfg := TestConfig()

	require.NoError(t, cfg.Validate())
	require.Less(t, cfg.HeartbeatInterval, DefaultConfig().HeartbeatInterval)
}
