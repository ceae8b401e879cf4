// Copyright 2025 NL2Flow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"nl2flow/platform/modules/base"
)

const (
	// DefaultPoolSize is the default connection pool size
	DefaultPoolSize = 100
	// DefaultMinIdleConns is the default minimum idle connection count
	DefaultMinIdleConns = 10
	// DefaultScanLimit caps key listing when no limit is given
	DefaultScanLimit = 100
)

// RedisModule drives Redis key-value stores for generated flows. It provides
// string and counter operations, TTL management, and pattern-based key
// scanning over a pooled client.
type RedisModule struct {
	config *base.ModuleConfig
	client *redis.Client
	logger *log.Logger
}

var _ base.Module = (*RedisModule)(nil)

// New creates a Redis module bound to the given configuration. The client is
// not built until Connect.
func New(cfg *base.ModuleConfig) *RedisModule {
	return &RedisModule{
		config: cfg,
		logger: log.New(os.Stdout, "[NLF_REDIS] ", log.LstdFlags),
	}
}

// Connect builds the Redis client and verifies connectivity with a ping
func (m *RedisModule) Connect(ctx context.Context) error {
	if m.config == nil {
		return base.NewModuleError("redis", "Connect", "module config is required", nil)
	}

	opts, err := m.buildOptions()
	if err != nil {
		return base.NewModuleError(m.Name(), "Connect", "failed to build client options", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return base.NewModuleError(m.Name(), "Connect", "failed to ping Redis", err)
	}

	m.client = client
	m.logger.Printf("Connected to Redis: %s (db=%d, pool_size=%d)", m.Name(), opts.DB, opts.PoolSize)

	return nil
}

// buildOptions assembles client options from the module config. A configured
// ConnectionURL (redis:// or rediss://) wins over individual options.
func (m *RedisModule) buildOptions() (*redis.Options, error) {
	var opts *redis.Options

	if m.config.ConnectionURL != "" {
		parsed, err := redis.ParseURL(m.config.ConnectionURL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		host := m.config.StringOption("host", "localhost")
		port := m.config.IntOption("port", 6379)
		opts = &redis.Options{
			Addr:     fmt.Sprintf("%s:%d", host, port),
			Password: m.config.Credential("password"),
			DB:       m.config.IntOption("db", 0),
		}
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = m.config.IntOption("pool_size", DefaultPoolSize)
	opts.MinIdleConns = m.config.IntOption("min_idle_conns", DefaultMinIdleConns)

	return opts, nil
}

// Close shuts down the Redis client. Safe to call on an unconnected module.
func (m *RedisModule) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}

	if err := m.client.Close(); err != nil {
		return base.NewModuleError(m.Name(), "Close", "failed to close connection", err)
	}

	m.client = nil
	m.logger.Printf("Disconnected from Redis: %s", m.Name())
	return nil
}

// HealthCheck verifies the Redis connection is healthy
func (m *RedisModule) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if m.client == nil {
		return &base.HealthStatus{
			Healthy:   false,
			Error:     "client not connected",
			Timestamp: time.Now(),
		}, nil
	}

	start := time.Now()
	err := m.client.Ping(ctx).Err()
	latency := time.Since(start)

	if err != nil {
		return &base.HealthStatus{
			Healthy:   false,
			Latency:   latency,
			Timestamp: time.Now(),
			Error:     err.Error(),
		}, nil
	}

	dbSize := m.client.DBSize(ctx).Val()
	poolStats := m.client.PoolStats()

	return &base.HealthStatus{
		Healthy:   true,
		Latency:   latency,
		Timestamp: time.Now(),
		Details: map[string]string{
			"db_size":    fmt.Sprintf("%d", dbSize),
			"pool_total": fmt.Sprintf("%d", poolStats.TotalConns),
			"pool_idle":  fmt.Sprintf("%d", poolStats.IdleConns),
		},
	}, nil
}

// Get retrieves a string value. The second return reports whether the key
// exists; a missing key is not an error.
func (m *RedisModule) Get(ctx context.Context, key string) (string, bool, error) {
	if m.client == nil {
		return "", false, base.NewModuleError(m.Name(), "Get", "client not connected", nil)
	}

	val, err := m.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, base.NewModuleError(m.Name(), "Get", "get failed", err)
	}
	return val, true, nil
}

// Set stores a value under a key with an optional TTL (0 means no expiry).
// Non-string values are JSON-encoded before storage.
func (m *RedisModule) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.client == nil {
		return base.NewModuleError(m.Name(), "Set", "client not connected", nil)
	}

	valueStr, err := encodeValue(value)
	if err != nil {
		return base.NewModuleError(m.Name(), "Set", "failed to encode value", err)
	}

	if err := m.client.Set(ctx, key, valueStr, ttl).Err(); err != nil {
		return base.NewModuleError(m.Name(), "Set", "set failed", err)
	}

	m.logger.Printf("SET %s (ttl=%v)", base.SanitizeLogString(key), ttl)
	return nil
}

// Delete removes one or more keys and returns how many existed
func (m *RedisModule) Delete(ctx context.Context, keys ...string) (int64, error) {
	if m.client == nil {
		return 0, base.NewModuleError(m.Name(), "Delete", "client not connected", nil)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	count, err := m.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "Delete", "delete failed", err)
	}
	return count, nil
}

// Exists reports whether a key exists
func (m *RedisModule) Exists(ctx context.Context, key string) (bool, error) {
	if m.client == nil {
		return false, base.NewModuleError(m.Name(), "Exists", "client not connected", nil)
	}

	count, err := m.client.Exists(ctx, key).Result()
	if err != nil {
		return false, base.NewModuleError(m.Name(), "Exists", "exists check failed", err)
	}
	return count > 0, nil
}

// Expire sets a TTL on an existing key. Returns false when the key does not
// exist.
func (m *RedisModule) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.client == nil {
		return false, base.NewModuleError(m.Name(), "Expire", "client not connected", nil)
	}
	if ttl <= 0 {
		return false, base.NewModuleError(m.Name(), "Expire", "ttl must be positive", nil)
	}

	ok, err := m.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, base.NewModuleError(m.Name(), "Expire", "expire failed", err)
	}
	return ok, nil
}

// TTL returns the remaining time to live of a key. Redis conventions apply:
// -1 means no expiry, -2 means the key does not exist.
func (m *RedisModule) TTL(ctx context.Context, key string) (time.Duration, error) {
	if m.client == nil {
		return 0, base.NewModuleError(m.Name(), "TTL", "client not connected", nil)
	}

	ttl, err := m.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "TTL", "ttl lookup failed", err)
	}
	return ttl, nil
}

// Increment adds delta to the integer value stored at key and returns the
// new value. Missing keys start at zero.
func (m *RedisModule) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	if m.client == nil {
		return 0, base.NewModuleError(m.Name(), "Increment", "client not connected", nil)
	}

	val, err := m.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, base.NewModuleError(m.Name(), "Increment", "increment failed", err)
	}
	return val, nil
}

// Keys lists keys matching a glob pattern using SCAN, capped at limit. SCAN
// avoids blocking the server the way KEYS does on large databases.
func (m *RedisModule) Keys(ctx context.Context, pattern string, limit int) ([]string, error) {
	if m.client == nil {
		return nil, base.NewModuleError(m.Name(), "Keys", "client not connected", nil)
	}

	if pattern == "" {
		pattern = "*"
	}
	if limit <= 0 {
		limit = DefaultScanLimit
	}

	var cursor uint64
	keys := make([]string, 0)
	for len(keys) < limit {
		batch, next, err := m.client.Scan(ctx, cursor, pattern, 10).Result()
		if err != nil {
			return nil, base.NewModuleError(m.Name(), "Keys", "scan failed", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys, nil
}

// Stats reports database size and connection pool statistics
func (m *RedisModule) Stats(ctx context.Context) (map[string]interface{}, error) {
	if m.client == nil {
		return nil, base.NewModuleError(m.Name(), "Stats", "client not connected", nil)
	}

	dbSize, err := m.client.DBSize(ctx).Result()
	if err != nil {
		return nil, base.NewModuleError(m.Name(), "Stats", "failed to read db size", err)
	}

	poolStats := m.client.PoolStats()
	return map[string]interface{}{
		"db_size":         dbSize,
		"pool_hits":       poolStats.Hits,
		"pool_misses":     poolStats.Misses,
		"pool_timeouts":   poolStats.Timeouts,
		"pool_total_conn": poolStats.TotalConns,
		"pool_idle_conn":  poolStats.IdleConns,
	}, nil
}

// Name returns the configured instance name, or "redis" when unnamed
func (m *RedisModule) Name() string {
	if m.config == nil || m.config.Name == "" {
		return "redis"
	}
	return m.config.Name
}

// encodeValue renders a value for storage. Strings and bytes pass through;
// everything else is JSON-encoded.
func encodeValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
