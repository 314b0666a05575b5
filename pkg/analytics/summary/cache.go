package summary

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/observability/metrics"
	"github.com/redis/go-redis/v9"
)

// Cache keeps computed KPI payloads in Redis for a short TTL. Every failure
// is non-fatal: a broken cache degrades to recomputation, never to an error.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, key string, out interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).WithField("key", key).Debug("summary cache read failed")
		}
		metrics.ObserveCacheMiss()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("summary cache entry corrupt")
		metrics.ObserveCacheMiss()
		return false
	}
	metrics.ObserveCacheHit()
	return true
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Debug("summary cache write failed")
	}
}
