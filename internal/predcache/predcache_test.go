package predcache

import (
	"testing"

	"github.com/Meesho/BharatMLStack/inferline/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enabledConfig() *config.AppConfigs {
	return &config.AppConfigs{Configs: config.Configs{
		PredictionCacheEnabled:     true,
		PredictionCacheSizeInBytes: 1024 * 1024,
		PredictionCacheTTLSec:      60,
	}}
}

func TestNew_DisabledReturnsNil(t *testing.T) {
	c := New(&config.AppConfigs{})
	assert.Nil(t, c)
}

func TestNilCache_IsPassThrough(t *testing.T) {
	var c *Cache
	_, ok := c.Get([]float32{1, 2})
	assert.False(t, ok)
	assert.NotPanics(t, func() { c.Put([]float32{1, 2}, 0.5) })
}

func TestPutGet_RoundTrip(t *testing.T) {
	c := New(enabledConfig())
	require.NotNil(t, c)

	features := []float32{0.1, 0.2, 0.3}
	c.Put(features, 0.875)

	prob, ok := c.Get(features)
	require.True(t, ok)
	assert.InDelta(t, 0.875, prob, 1e-12)
}

func TestGet_MissOnDifferentFeatures(t *testing.T) {
	c := New(enabledConfig())
	require.NotNil(t, c)

	c.Put([]float32{1, 2, 3}, 0.5)
	_, ok := c.Get([]float32{1, 2, 4})
	assert.False(t, ok)
}

func TestCacheKey_DistinguishesOrder(t *testing.T) {
	a := cacheKey([]float32{1, 2})
	b := cacheKey([]float32{2, 1})
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 16)
}
