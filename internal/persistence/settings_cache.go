package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
)

const settingsCacheKey = "sla:settings:snapshot"

// SettingsCache keeps the latest SLA settings snapshot in Redis so the
// sweeper and the preview endpoint do not hit Postgres on every call.
// Cache failures degrade to a miss; the database stays authoritative.
type SettingsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewSettingsCache builds the cache around an existing Redis connection.
func NewSettingsCache(r *Redis, ttl time.Duration, logger *zap.Logger) *SettingsCache {
	if r == nil {
		return &SettingsCache{ttl: ttl, logger: logger}
	}
	return &SettingsCache{client: r.Client, ttl: ttl, logger: logger}
}

// Get returns the cached snapshot, or ok=false on miss or cache trouble.
func (c *SettingsCache) Get(ctx context.Context) (*domain.SLASettings, bool) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil, false
	}
	raw, err := c.client.Get(ctx, settingsCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("settings cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var settings domain.SLASettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		c.logger.Warn("settings cache payload corrupt", zap.Error(err))
		return nil, false
	}
	return &settings, true
}

// Set stores the snapshot with the configured TTL.
func (c *SettingsCache) Set(ctx context.Context, settings *domain.SLASettings) {
	if c == nil || c.client == nil || c.ttl <= 0 || settings == nil {
		return
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		c.logger.Warn("settings cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, settingsCacheKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("settings cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached snapshot after a settings write.
func (c *SettingsCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, settingsCacheKey).Err(); err != nil {
		c.logger.Warn("settings cache invalidate failed", zap.Error(err))
	}
}
