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
	assert.Equal(t, 24*time.Hour, cfg.Analytics.DedupWindow)
	assert.Equal(t, 0.01, cfg.Analytics.CleanupProbability)
	assert.Equal(t, 30*time.Second, cfg.Analytics.CleanupTimeout)
	assert.Empty(t, cfg.Analytics.CleanupSchedule)
	assert.Equal(t, "shared", cfg.Analytics.UnknownClientPolicy)
	assert.True(t, cfg.Analytics.DedupCacheEnabled)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Empty(t, cfg.App.LogFile)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ANALYTICS_DEDUP_WINDOW", "12h")
	t.Setenv("ANALYTICS_CLEANUP_PROBABILITY", "0.25")
	t.Setenv("ANALYTICS_CLEANUP_SCHEDULE", "@hourly")
	t.Setenv("ANALYTICS_UNKNOWN_CLIENT_POLICY", "distinct")
	t.Setenv("ANALYTICS_DEDUP_CACHE_ENABLED", "false")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("LOG_FILE", "/var/log/analytics.log")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12*time.Hour, cfg.Analytics.DedupWindow)
	assert.Equal(t, 0.25, cfg.Analytics.CleanupProbability)
	assert.Equal(t, "@hourly", cfg.Analytics.CleanupSchedule)
	assert.Equal(t, "distinct", cfg.Analytics.UnknownClientPolicy)
	assert.False(t, cfg.Analytics.DedupCacheEnabled)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "/var/log/analytics.log", cfg.App.LogFile)
	assert.Contains(t, cfg.Database.DatabaseDSN(), "host=db.internal")
}

func TestLoad_MalformedValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("ANALYTICS_DEDUP_WINDOW", "a day")
	t.Setenv("ANALYTICS_CLEANUP_PROBABILITY", "often")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Analytics.DedupWindow)
	assert.Equal(t, 0.01, cfg.Analytics.CleanupProbability)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"negative window", "ANALYTICS_DEDUP_WINDOW", "-1h"},
		{"zero window", "ANALYTICS_DEDUP_WINDOW", "0s"},
		{"probability above one", "ANALYTICS_CLEANUP_PROBABILITY", "1.5"},
		{"negative probability", "ANALYTICS_CLEANUP_PROBABILITY", "-0.1"},
		{"zero cleanup timeout", "ANALYTICS_CLEANUP_TIMEOUT", "0s"},
		{"unknown policy", "ANALYTICS_UNKNOWN_CLIENT_POLICY", "per-request"},
		{"bad schedule", "ANALYTICS_CLEANUP_SCHEDULE", "every so often"},
		{"zero rate limit", "RATE_LIMIT_REQUESTS_PER_MINUTE", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestRedisAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: "6380"}
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
}
