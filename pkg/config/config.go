package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Chain collaborators
	RPCURL      string
	IndexerURL  string
	IdentityURL string

	// Settlement tracking
	SettleDeadline     time.Duration
	PollInitialBackoff time.Duration
	PollMaxBackoff     time.Duration
	PollBackoffMult    float64
	TargetLevel        string

	// Store
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Content persistence
	PostgresHost string
	PostgresPort string
	PostgresUser string
	PostgresPass string
	PostgresDB   string
	PostgresSSL  string

	// Identity cache
	IdentityCacheTTL time.Duration
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8080"),

		// Chain collaborator defaults
		RPCURL:      getEnvOrDefault("CHAIN_RPC_URL", "https://api.mainnet-beta.solana.com"),
		IndexerURL:  getEnvOrDefault("INDEXER_URL", "http://localhost:8900"),
		IdentityURL: getEnvOrDefault("IDENTITY_URL", "http://localhost:8910"),

		// Settlement tracking defaults
		SettleDeadline:     getDurationOrDefault("SETTLE_DEADLINE", 60*time.Second),
		PollInitialBackoff: getDurationOrDefault("SETTLE_POLL_INITIAL_BACKOFF", 100*time.Millisecond),
		PollMaxBackoff:     getDurationOrDefault("SETTLE_POLL_MAX_BACKOFF", 2*time.Second),
		PollBackoffMult:    getFloat64OrDefault("SETTLE_POLL_BACKOFF_MULTIPLIER", 1.5),
		TargetLevel:        getEnvOrDefault("SETTLE_TARGET_LEVEL", "confirmed"),

		// Store defaults
		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getIntOrDefault("REDIS_DB", 0),

		// Content persistence defaults
		PostgresHost: getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort: getEnvOrDefault("POSTGRES_PORT", "5432"),
		PostgresUser: getEnvOrDefault("POSTGRES_USER", "tradeboard"),
		PostgresPass: getEnvOrDefault("POSTGRES_PASSWORD", "tradeboard123"),
		PostgresDB:   getEnvOrDefault("POSTGRES_DB", "tradeboard_rewards"),
		PostgresSSL:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),

		// Identity cache defaults
		IdentityCacheTTL: getDurationOrDefault("IDENTITY_CACHE_TTL", 5*time.Minute),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.RPCURL == "" {
		return fmt.Errorf("CHAIN_RPC_URL cannot be empty")
	}

	if c.IndexerURL == "" {
		return fmt.Errorf("INDEXER_URL cannot be empty")
	}

	if c.SettleDeadline <= 0 {
		return fmt.Errorf("SETTLE_DEADLINE must be positive, got %s", c.SettleDeadline)
	}

	if c.PollInitialBackoff <= 0 {
		return fmt.Errorf("SETTLE_POLL_INITIAL_BACKOFF must be positive, got %s", c.PollInitialBackoff)
	}

	if c.PollMaxBackoff < c.PollInitialBackoff {
		return fmt.Errorf("SETTLE_POLL_MAX_BACKOFF must be >= initial backoff, got %s", c.PollMaxBackoff)
	}

	if c.PollBackoffMult <= 1.0 {
		return fmt.Errorf("SETTLE_POLL_BACKOFF_MULTIPLIER must be > 1.0, got %f", c.PollBackoffMult)
	}

	if c.TargetLevel != "confirmed" && c.TargetLevel != "finalized" {
		return fmt.Errorf("SETTLE_TARGET_LEVEL must be 'confirmed' or 'finalized', got %q", c.TargetLevel)
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR cannot be empty")
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
