package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInitConfig_DefaultsAndOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_NAME", "inferline-test")
	t.Setenv("QUEUE_CAPACITY", "512")
	t.Setenv("REQUEST_TIMEOUT_MS", "250")

	var app AppConfigs
	InitConfig(&app)

	// Overrides from the environment.
	assert.Equal(t, "inferline-test", app.Configs.ApplicationName)
	assert.Equal(t, 512, app.Configs.QueueCapacity)
	assert.Equal(t, 250, app.Configs.RequestTimeoutMs)

	// Everything else falls back to defaults.
	assert.Equal(t, 8080, app.Configs.ApplicationPort)
	assert.InDelta(t, 0.8, app.Configs.QueueWatermarkFraction, 1e-9)
	assert.Equal(t, 5, app.Configs.BatchWindowMs)
	assert.Equal(t, 32, app.Configs.BatchMaxSize)
	assert.False(t, app.Configs.PredictionCacheEnabled)
}

func TestConfigs_DurationHelpers(t *testing.T) {
	c := Configs{
		BatchWindowMs:          5,
		RequestTimeoutMs:       100,
		PredictionCacheTTLSec:  60,
		QueueCapacity:          2000,
		QueueWatermarkFraction: 0.8,
	}

	assert.Equal(t, 5*time.Millisecond, c.BatchWindow())
	assert.Equal(t, 100*time.Millisecond, c.RequestTimeout())
	assert.Equal(t, time.Minute, c.PredictionCacheTTL())
	assert.Equal(t, 1600, c.WatermarkDepth())
}
