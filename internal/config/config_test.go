package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoragePostgres, cfg.Recovery.Storage)
	assert.Equal(t, 30, cfg.Recovery.StaleThresholdDays)
	assert.Equal(t, 16, cfg.Recovery.BulkWorkers)
	assert.True(t, cfg.Recovery.SeedOnEmpty)
	assert.Equal(t, 0.05, cfg.Simulator.FailureRate)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", StorageMemory)
	t.Setenv("STALE_THRESHOLD_DAYS", "45")
	t.Setenv("PROCESSOR_FAILURE_RATE", "0.2")
	t.Setenv("SEED_ON_EMPTY", "false")
	t.Setenv("SERVER_READ_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Recovery.Storage)
	assert.Equal(t, 45, cfg.Recovery.StaleThresholdDays)
	assert.Equal(t, 0.2, cfg.Simulator.FailureRate)
	assert.False(t, cfg.Recovery.SeedOnEmpty)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Host: "localhost", DBName: "recovery"},
			Simulator: SimulatorConfig{
				FailureRate:  0.05,
				MinLatencyMS: 10,
				MaxLatencyMS: 200,
			},
			Recovery: RecoveryConfig{
				Storage:            StoragePostgres,
				StaleThresholdDays: 30,
				BulkWorkers:        16,
			},
			Logger: LoggerConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "empty port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "port",
		},
		{
			name:    "bad storage backend",
			mutate:  func(c *Config) { c.Recovery.Storage = "sqlite" },
			wantErr: "storage backend",
		},
		{
			name:    "failure rate above 1",
			mutate:  func(c *Config) { c.Simulator.FailureRate = 1.5 },
			wantErr: "failure rate",
		},
		{
			name:    "max latency below min",
			mutate:  func(c *Config) { c.Simulator.MaxLatencyMS = 5 },
			wantErr: "max latency",
		},
		{
			name:    "zero stale threshold",
			mutate:  func(c *Config) { c.Recovery.StaleThresholdDays = 0 },
			wantErr: "stale threshold",
		},
		{
			name:    "zero bulk workers",
			mutate:  func(c *Config) { c.Recovery.BulkWorkers = 0 },
			wantErr: "bulk workers",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logger.Level = "verbose" },
			wantErr: "log level",
		},
		{
			name:   "memory backend skips database checks",
			mutate: func(c *Config) { c.Recovery.Storage = StorageMemory; c.Database.Host = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestStaleThreshold(t *testing.T) {
	cfg := RecoveryConfig{StaleThresholdDays: 30}
	assert.Equal(t, 30*24*time.Hour, cfg.StaleThreshold())
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "secret",
		DBName: "recovery", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=secret dbname=recovery sslmode=disable",
		cfg.DSN())
}
