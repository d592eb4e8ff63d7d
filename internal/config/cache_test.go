package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearCacheEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CACHE_ENABLED", "CACHE_METHODS", "CACHE_TTL",
		"CACHE_KEY_STRATEGY", "CACHE_PREFIX", "CACHE_MAX_BODY_BYTES",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	clearCacheEnv(t)

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true}, cfg.Methods)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, "route_query", cfg.KeyStrategy)
	assert.Equal(t, "cache", cfg.Prefix)
	assert.Equal(t, 1048576, cfg.MaxBodyBytes)
}

func TestCacheMethodsUpperCasedAndTrimmed(t *testing.T) {
	clearCacheEnv(t)
	t.Setenv("CACHE_METHODS", "get, head ,Options")

	cfg := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true, "OPTIONS": true}, cfg.Methods)
}

func TestCacheDisabled(t *testing.T) {
	clearCacheEnv(t)
	t.Setenv("CACHE_ENABLED", "false")

	assert.False(t, LoadCacheConfig().Enabled)
}

func TestCacheBadTTLFallsBack(t *testing.T) {
	clearCacheEnv(t)
	t.Setenv("CACHE_TTL", "soon")

	assert.Equal(t, time.Second, LoadCacheConfig().TTL)
}
