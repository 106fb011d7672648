package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "furniture-storefront", cfg.ServiceName)
	assert.Equal(t, []string{"localhost:9090"}, cfg.Backend.Addrs)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Backend.LoginRetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BACKEND_ADDRS", " a:9090, b:9090 ,")
	t.Setenv("BACKEND_TIMEOUT", "2s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("RATE_LIMIT", "50")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"a:9090", "b:9090"}, cfg.Backend.Addrs)
	assert.Equal(t, 2*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 50, cfg.RateLimit)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")

	_, err := Load("")
	assert.ErrorContains(t, err, "CACHE_TTL")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("INITIAL_FRAGMENT=\"#/admin\"\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("INITIAL_FRAGMENT") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "#/admin", cfg.InitialFragment)
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
