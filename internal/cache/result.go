package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yingtu-pmc/analyzer-go/internal/config"
	"github.com/yingtu-pmc/analyzer-go/internal/engine"
)

const (
	statsKey         = "analysis:stats"
	defaultResultTTL = 5 * time.Minute
)

// RunStatsCache holds the latest run's headline figures so the dashboard
// endpoints can answer without touching the full result.
type RunStatsCache interface {
	GetStats(ctx context.Context) (*engine.RunStats, bool, error)
	SetStats(ctx context.Context, stats *engine.RunStats) error
	Invalidate(ctx context.Context) error
}

type redisRunStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopRunStatsCache struct{}

func NewRunStatsCache(cfg config.CacheConfig) (RunStatsCache, error) {
	if !cfg.Enabled {
		return &noopRunStatsCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.ResultTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultResultTTL
	}

	return &redisRunStatsCache{client: client, ttl: ttl}, nil
}

func NewNoopRunStatsCache() RunStatsCache {
	return &noopRunStatsCache{}
}

func (c *redisRunStatsCache) GetStats(ctx context.Context) (*engine.RunStats, bool, error) {
	payload, err := c.client.Get(ctx, statsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var stats engine.RunStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, false, fmt.Errorf("decode run stats cache: %w", err)
	}
	return &stats, true, nil
}

func (c *redisRunStatsCache) SetStats(ctx context.Context, stats *engine.RunStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode run stats cache: %w", err)
	}
	if err := c.client.Set(ctx, statsKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisRunStatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, statsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *noopRunStatsCache) GetStats(ctx context.Context) (*engine.RunStats, bool, error) {
	return nil, false, nil
}

func (c *noopRunStatsCache) SetStats(ctx context.Context, stats *engine.RunStats) error {
	return nil
}

func (c *noopRunStatsCache) Invalidate(ctx context.Context) error {
	return nil
}
