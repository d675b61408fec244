package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPCURL)
	assert.Equal(t, 60*time.Second, cfg.SettleDeadline)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInitialBackoff)
	assert.Equal(t, 2*time.Second, cfg.PollMaxBackoff)
	assert.Equal(t, 1.5, cfg.PollBackoffMult)
	assert.Equal(t, "confirmed", cfg.TargetLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "disable", cfg.PostgresSSL)
	assert.Equal(t, 5*time.Minute, cfg.IdentityCacheTTL)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("SETTLE_DEADLINE", "90s")
	t.Setenv("SETTLE_POLL_BACKOFF_MULTIPLIER", "2.0")
	t.Setenv("SETTLE_TARGET_LEVEL", "finalized")
	t.Setenv("REDIS_DB", "3")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.SettleDeadline)
	assert.Equal(t, 2.0, cfg.PollBackoffMult)
	assert.Equal(t, "finalized", cfg.TargetLevel)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoadFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("SETTLE_DEADLINE", "not-a-duration")
	t.Setenv("SETTLE_POLL_BACKOFF_MULTIPLIER", "not-a-float")
	t.Setenv("REDIS_DB", "not-an-int")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.SettleDeadline)
	assert.Equal(t, 1.5, cfg.PollBackoffMult)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:           "8080",
			RPCURL:             "http://localhost:8899",
			IndexerURL:         "http://localhost:8900",
			SettleDeadline:     time.Minute,
			PollInitialBackoff: 100 * time.Millisecond,
			PollMaxBackoff:     2 * time.Second,
			PollBackoffMult:    1.5,
			TargetLevel:        "confirmed",
			RedisAddr:          "localhost:6379",
		}
	}

	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.HTTPPort = "" }},
		{"empty rpc url", func(c *Config) { c.RPCURL = "" }},
		{"empty indexer url", func(c *Config) { c.IndexerURL = "" }},
		{"zero deadline", func(c *Config) { c.SettleDeadline = 0 }},
		{"zero initial backoff", func(c *Config) { c.PollInitialBackoff = 0 }},
		{"max below initial", func(c *Config) { c.PollMaxBackoff = 50 * time.Millisecond }},
		{"multiplier at 1.0", func(c *Config) { c.PollBackoffMult = 1.0 }},
		{"bogus target level", func(c *Config) { c.TargetLevel = "processed" }},
		{"empty redis addr", func(c *Config) { c.RedisAddr = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
