package predcache

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/Meesho/BharatMLStack/inferline/internal/config"
	"github.com/Meesho/BharatMLStack/inferline/pkg/logger"
	"github.com/Meesho/BharatMLStack/inferline/pkg/metrics"
	"github.com/coocood/freecache"
	"github.com/spaolacci/murmur3"
)

const metricUpdateInterval = 1 * time.Minute

// Cache memoizes predictions for identical feature vectors. Entries expire
// on a short TTL so a model swap does not serve stale scores for long.
type Cache struct {
	inMemCache *freecache.Cache
	ttlSec     int
}

// New builds the cache from app config, or returns nil when disabled.
// Callers treat a nil cache as a pass-through.
func New(configs *config.AppConfigs) *Cache {
	if !configs.Configs.PredictionCacheEnabled {
		return nil
	}
	c := &Cache{
		inMemCache: freecache.NewCache(configs.Configs.PredictionCacheSizeInBytes),
		ttlSec:     configs.Configs.PredictionCacheTTLSec,
	}
	go c.publishMetric()
	logger.Info("Prediction cache initialized")
	return c
}

// Get returns a cached probability for the feature vector, if present.
func (c *Cache) Get(features []float32) (float64, bool) {
	if c == nil {
		return 0, false
	}
	value, err := c.inMemCache.Get(cacheKey(features))
	if err != nil || len(value) != 8 {
		metrics.Count(metrics.CacheMisses, 1, nil)
		return 0, false
	}
	metrics.Count(metrics.CacheHits, 1, nil)
	return math.Float64frombits(binary.LittleEndian.Uint64(value)), true
}

// Put stores a completed prediction.
func (c *Cache) Put(features []float32, probability float64) {
	if c == nil {
		return
	}
	value := make([]byte, 8)
	binary.LittleEndian.PutUint64(value, math.Float64bits(probability))
	if err := c.inMemCache.Set(cacheKey(features), value, c.ttlSec); err != nil {
		logger.PercentError("Prediction cache set failed", err, 10)
	}
}

// cacheKey hashes the raw feature bytes; collisions on 128 bits are not a
// serving concern.
func cacheKey(features []float32) []byte {
	raw := make([]byte, 4*len(features))
	for i, f := range features {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(f))
	}
	h1, h2 := murmur3.Sum128(raw)
	key := make([]byte, 16)
	binary.LittleEndian.PutUint64(key[:8], h1)
	binary.LittleEndian.PutUint64(key[8:], h2)
	return key
}

// publishMetric reports cache health every metricUpdateInterval.
func (c *Cache) publishMetric() {
	ticker := time.NewTicker(metricUpdateInterval)
	defer ticker.Stop()
	for range ticker.C {
		metrics.Gauge("inferline.prediction_cache.hit_rate", c.inMemCache.HitRate(), nil)
		metrics.Gauge("inferline.prediction_cache.entry_count", float64(c.inMemCache.EntryCount()), nil)
	}
}
