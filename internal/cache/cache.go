package cache

import (
	"context"
	"encoding/json"
	"time"

	"carvfi/internal/logger"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL    = time.Minute
	opTimeout     = 2 * time.Second
	scanBatch     = 1000
	maxScanRounds = 10
)

// Connect returns a client for addr, or nil when addr is empty or the
// server does not answer. Callers treat a nil client as "no cache".
func Connect(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, continuing without cache", "addr", addr, "error", err)
		_ = rc.Close()
		return nil
	}
	logger.Info("redis connected", "addr", addr)
	return rc
}

// Cache is a JSON cache over redis. A Cache with a nil client never hits
// and silently drops writes.
type Cache struct {
	rc *redis.Client
}

func New(rc *redis.Client) *Cache {
	return &Cache{rc: rc}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.rc != nil
}

// GetJSON decodes the value at key into dst and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	if !c.Enabled() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	b, err := c.rc.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Debug("cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		logger.Warn("cache entry undecodable", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.rc.Set(ctx, key, b, ttl).Err(); err != nil {
		logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// InvalidatePrefix deletes keys starting with prefix using SCAN.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) {
	if !c.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var cursor uint64
	for i := 0; i < maxScanRounds; i++ {
		keys, next, err := c.rc.Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			logger.Warn("cache invalidate failed", "prefix", prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			pipe := c.rc.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rc.Ping(ctx).Err()
}
