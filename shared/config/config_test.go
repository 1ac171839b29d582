package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadCache(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("VIEW_CACHE_TTL", "5s")

	cfg := LoadCache()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 6380, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.TTL)

	t.Setenv("CACHE_ENABLED", "not-a-bool")
	assert.False(t, LoadCache().Enabled)
}

func TestLoadMonitoring_MetricsToggle(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "")
	assert.True(t, LoadMonitoring().MetricsEnabled)

	t.Setenv("METRICS_ENABLED", "0")
	assert.False(t, LoadMonitoring().MetricsEnabled)
}
