// Package redis caches raw fetch responses so repeated analysis runs
// within a day do not hammer the exchange endpoints. The core engines
// never cache; the fetch layer is the caller that owns this policy.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// Config configures the cache connection.
type Config struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration
}

// Cache is a thin TTL cache over Redis keyed by fetch unit.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
}

// Client returns the underlying Redis client for health checks.
func (c *Cache) Client() *goredis.Client { return c.client }

// New connects to Redis and pings the server.
func New(cfg Config) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	slog.Info("connected to redis cache", "addr", cfg.Addr)
	return &Cache{client: client, ttl: cfg.TTL}, nil
}

// Key builds the cache key for a fetch unit: "fetch:{endpoint}:{unit}".
func Key(endpoint, unit string) string {
	return "fetch:" + endpoint + ":" + unit
}

// Get returns the cached payload for key, or ok=false on a miss. Transport
// errors degrade to a miss with a warning; the cache is an optimization,
// never a point of failure.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.Warn("redis get failed", "key", key, "err", err)
		}
		return nil, false
	}
	return b, true
}

// Set stores a payload under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) {
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		slog.Warn("redis set failed", "key", key, "err", err)
	}
}

// Close releases the client.
func (c *Cache) Close() error { return c.client.Close() }
