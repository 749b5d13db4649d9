// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend selectors
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Database  DatabaseConfig
	Simulator SimulatorConfig
	Recovery  RecoveryConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	ConnMaxLifetime time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
}

// SimulatorConfig shapes the synthetic behavior of the processor mocks
type SimulatorConfig struct {
	FailureRate  float64
	MinLatencyMS int
	MaxLatencyMS int
}

// RecoveryConfig holds recovery-engine configuration
type RecoveryConfig struct {
	Storage            string
	StaleThresholdDays int
	BulkWorkers        int
	SeedOnEmpty        bool
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level string // debug, info, warn, error
}

// Load loads configuration from environment variables with sensible defaults.
// A local .env file, if present, is applied first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", "15s"),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", "60s"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "recovery"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", "5m"),
		},
		Simulator: SimulatorConfig{
			FailureRate:  getEnvAsFloat("PROCESSOR_FAILURE_RATE", 0.05),
			MinLatencyMS: getEnvAsInt("PROCESSOR_MIN_LATENCY_MS", 10),
			MaxLatencyMS: getEnvAsInt("PROCESSOR_MAX_LATENCY_MS", 200),
		},
		Recovery: RecoveryConfig{
			Storage:            getEnv("STORAGE_BACKEND", StoragePostgres),
			StaleThresholdDays: getEnvAsInt("STALE_THRESHOLD_DAYS", 30),
			BulkWorkers:        getEnvAsInt("BULK_WORKERS", 16),
			SeedOnEmpty:        getEnvAsBool("SEED_ON_EMPTY", true),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Recovery.Storage != StoragePostgres && c.Recovery.Storage != StorageMemory {
		return fmt.Errorf("storage backend must be %q or %q, got %q",
			StoragePostgres, StorageMemory, c.Recovery.Storage)
	}

	if c.Recovery.Storage == StoragePostgres {
		if c.Database.Host == "" {
			return fmt.Errorf("database host cannot be empty")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name cannot be empty")
		}
	}

	if c.Simulator.FailureRate < 0 || c.Simulator.FailureRate > 1 {
		return fmt.Errorf("failure rate must be between 0 and 1, got %f", c.Simulator.FailureRate)
	}

	if c.Simulator.MinLatencyMS < 0 {
		return fmt.Errorf("min latency cannot be negative")
	}
	if c.Simulator.MaxLatencyMS < c.Simulator.MinLatencyMS {
		return fmt.Errorf("max latency (%d) must be >= min latency (%d)",
			c.Simulator.MaxLatencyMS, c.Simulator.MinLatencyMS)
	}

	if c.Recovery.StaleThresholdDays <= 0 {
		return fmt.Errorf("stale threshold must be positive, got %d", c.Recovery.StaleThresholdDays)
	}
	if c.Recovery.BulkWorkers <= 0 {
		return fmt.Errorf("bulk workers must be positive, got %d", c.Recovery.BulkWorkers)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// StaleThreshold returns the staleness cutoff as a duration.
func (c *RecoveryConfig) StaleThreshold() time.Duration {
	return time.Duration(c.StaleThresholdDays) * 24 * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to parsing the default if provided value is invalid
		duration, err = time.ParseDuration(defaultValue)
		if err != nil {
			return 0
		}
	}
	return duration
}
