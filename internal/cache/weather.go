package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/stores/redis"

	"ekata-api/pkg/weather"
)

// Store is the subset of go-zero's redis client the caches rely on.
type Store interface {
	GetCtx(ctx context.Context, key string) (string, error)
	SetexCtx(ctx context.Context, key, value string, seconds int) error
}

var _ Store = (*redis.Redis)(nil)

// WeatherCache stores msgpack encoded conditions in Redis.
type WeatherCache struct {
	store Store
}

var _ weather.Cache = (*WeatherCache)(nil)

// NewWeatherCache wraps store.
func NewWeatherCache(store Store) *WeatherCache {
	return &WeatherCache{store: store}
}

// NewRedisWeatherCache connects using the go-zero redis configuration.
func NewRedisWeatherCache(conf redis.RedisConf) (*WeatherCache, error) {
	rds, err := redis.NewRedis(conf)
	if err != nil {
		return nil, fmt.Errorf("cache: connect redis: %w", err)
	}
	return NewWeatherCache(rds), nil
}

// Get returns the cached reading, if any. A miss is not an error.
func (c *WeatherCache) Get(ctx context.Context, lat, lon float64) (*weather.Conditions, bool, error) {
	key := WeatherKey(lat, lon)
	raw, err := c.store.GetCtx(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if raw == "" {
		return nil, false, nil
	}
	var out weather.Conditions
	if err := msgpack.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return &out, true, nil
}

// Set stores c for ttl, rounded up to whole seconds.
func (c *WeatherCache) Set(ctx context.Context, lat, lon float64, cond *weather.Conditions, ttl time.Duration) error {
	if cond == nil || ttl <= 0 {
		return nil
	}
	key := WeatherKey(lat, lon)
	payload, err := msgpack.Marshal(cond)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	seconds := int((ttl + time.Second - 1) / time.Second)
	if err := c.store.SetexCtx(ctx, key, string(payload), seconds); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}
