package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"KYC_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "GATE_CACHE_TTL", "TX_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Minute, cfg.Gate.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.TxTimeout)
	assert.Equal(t, "/kyc/submit", cfg.Gate.SubmissionURL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("KYC_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("GATE_CACHE_TTL", "30s")
	t.Setenv("REDIS_POOL_SIZE", "25")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Gate.CacheTTL)
	assert.Equal(t, 25, cfg.Redis.PoolSize)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Run("duration", func(t *testing.T) {
		t.Setenv("TX_TIMEOUT", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "TX_TIMEOUT")
	})
	t.Run("non-positive duration", func(t *testing.T) {
		t.Setenv("GATE_CACHE_TTL", "0s")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "GATE_CACHE_TTL")
	})
	t.Run("integer", func(t *testing.T) {
		t.Setenv("REDIS_POOL_SIZE", "many")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "REDIS_POOL_SIZE")
	})
}
