package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AlertGate deduplicates breach alerts across sweeps with a Redis SETNX
// lock per ticket and metric. Without Redis every caller wins, which means
// repeated alerts rather than lost ones.
type AlertGate struct {
	client *redis.Client
	logger *zap.Logger
}

// NewAlertGate builds the gate around an existing Redis connection.
func NewAlertGate(r *Redis, logger *zap.Logger) *AlertGate {
	if r == nil {
		return &AlertGate{logger: logger}
	}
	return &AlertGate{client: r.Client, logger: logger}
}

// AcquireOnce returns true the first time a key is claimed within ttl.
func (g *AlertGate) AcquireOnce(ctx context.Context, key string, ttl time.Duration) bool {
	if g == nil || g.client == nil {
		return true
	}
	ok, err := g.client.SetNX(ctx, "sla:alert:"+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		g.logger.Warn("alert dedupe unavailable", zap.Error(err), zap.String("key", key))
		return true
	}
	return ok
}
