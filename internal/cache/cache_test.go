package cache

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCacheIsNoop(t *testing.T) {
	ctx := context.Background()
	var c *Cache
	assert.False(t, c.Enabled())

	c = New(nil)
	c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute)
	var out map[string]int
	assert.False(t, c.GetJSON(ctx, "k", &out))
	c.InvalidatePrefix(ctx, "k")
	assert.NoError(t, c.Ping(ctx))
}

func TestConnectWithoutAddr(t *testing.T) {
	assert.Nil(t, Connect("", "", 0))
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}
	rc := Connect(addr, os.Getenv("REDIS_PASSWORD"), db)
	require.NotNil(t, rc)
	defer rc.Close()

	ctx := context.Background()
	c := New(rc)
	prefix := "carvfi:test:" + strconv.FormatInt(time.Now().UnixNano(), 10) + ":"

	c.SetJSON(ctx, prefix+"a", []int{1, 2, 3}, time.Minute)
	var got []int
	require.True(t, c.GetJSON(ctx, prefix+"a", &got))
	assert.Equal(t, []int{1, 2, 3}, got)

	c.InvalidatePrefix(ctx, prefix)
	assert.False(t, c.GetJSON(ctx, prefix+"a", &got))
}
