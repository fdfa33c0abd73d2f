// Package redis caches backend lookups (crop monitoring records) in Redis.
//
// Values are stored as JSON under "<prefix>:<key>". The CLI uses it as:
//
//	cache := redis.NewDriverFromConfig(settings.Redis)
//	crops := api.NewCachedCrops(client, cache, settings.Redis.TTL, logger)
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agroguard/agroguard/core/pkg/contracts"
	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint for SCAN during DeletePattern
const scanBatch = 100

// Driver implements contracts.Cache on a go-redis client
type Driver struct {
	client     *redis.Client
	namespace  string
	defaultTTL time.Duration
}

// Option configures the Driver
type Option func(*Driver)

// WithPrefix namespaces every key. A trailing ":" is optional.
func WithPrefix(prefix string) Option {
	return func(d *Driver) {
		d.namespace = strings.TrimSuffix(prefix, ":")
	}
}

// WithDefaultTTL sets the expiry used when Set or Remember get a zero ttl
func WithDefaultTTL(ttl time.Duration) Option {
	return func(d *Driver) {
		d.defaultTTL = ttl
	}
}

// NewDriver wraps an existing client
func NewDriver(client *redis.Client, opts ...Option) *Driver {
	d := &Driver{client: client}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDriverFromConfig builds a client from the redis settings. The connection is
// lazy, so an unreachable server only shows up on the first command.
func NewDriverFromConfig(cfg contracts.CacheConfig) *Driver {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.Database,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})
	return NewDriver(client, WithPrefix(cfg.Prefix), WithDefaultTTL(cfg.TTL))
}

// Client exposes the go-redis client
func (d *Driver) Client() *redis.Client {
	return d.client
}

func (d *Driver) key(k string) string {
	if d.namespace == "" {
		return k
	}
	return d.namespace + ":" + k
}

func (d *Driver) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return d.defaultTTL
	}
	return ttl
}

// Get decodes the JSON stored at key into dest. A missing key is contracts.ErrCacheMiss.
func (d *Driver) Get(ctx context.Context, key string, dest any) error {
	raw, err := d.client.Get(ctx, d.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return contracts.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("redis decode %s: %w", key, err)
	}
	return nil
}

// Set stores value as JSON
func (d *Driver) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	_, err := d.store(ctx, key, value, ttl)
	return err
}

func (d *Driver) store(ctx context.Context, key string, value any, ttl time.Duration) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("redis encode %s: %w", key, err)
	}
	if err := d.client.Set(ctx, d.key(key), raw, d.ttl(ttl)).Err(); err != nil {
		return nil, fmt.Errorf("redis set %s: %w", key, err)
	}
	return raw, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (d *Driver) Delete(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.key(key)).Err()
}

// DeletePattern removes every key matching a glob pattern inside the namespace
// and reports how many were removed.
func (d *Driver) DeletePattern(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := d.client.Scan(ctx, cursor, d.key(pattern), scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := d.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("redis del %s: %w", pattern, err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// Exists reports whether key is present
func (d *Driver) Exists(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(key)).Result()
	return n > 0, err
}

// Remember fills dest from the cache, or from fn on a miss. The fetched value is
// round-tripped through JSON so dest looks the same on a hit and on a miss.
// Redis errors other than a miss are returned without calling fn.
func (d *Driver) Remember(ctx context.Context, key string, ttl time.Duration, fn func() (any, error), dest any) error {
	err := d.Get(ctx, key, dest)
	if !errors.Is(err, contracts.ErrCacheMiss) {
		return err
	}

	value, err := fn()
	if err != nil {
		return err
	}
	raw, err := d.store(ctx, key, value, ttl)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Name is the health check name
func (d *Driver) Name() string {
	return "redis"
}

// Ping sends PING
func (d *Driver) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// Close releases the connection pool
func (d *Driver) Close() error {
	return d.client.Close()
}

var (
	_ contracts.Cache         = (*Driver)(nil)
	_ contracts.HealthChecker = (*Driver)(nil)
)
