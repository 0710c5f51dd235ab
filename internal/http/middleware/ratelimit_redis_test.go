package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"carvfi/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimit_FailOpenWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	UseRedis(nil)

	r := gin.New()
	r.GET("/test", RedisRateLimit("test", 1, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

type stubCounter struct {
	count     int64
	expireErr error
	ttl       time.Duration
	deleted   []string
}

func (s *stubCounter) Incr(context.Context, string) *redis.IntCmd {
	s.count++
	return redis.NewIntResult(s.count, nil)
}

func (s *stubCounter) Expire(_ context.Context, _ string, ttl time.Duration) *redis.BoolCmd {
	if s.expireErr != nil {
		return redis.NewBoolResult(false, s.expireErr)
	}
	s.ttl = ttl
	return redis.NewBoolResult(true, nil)
}

func (s *stubCounter) Del(_ context.Context, keys ...string) *redis.IntCmd {
	s.deleted = append(s.deleted, keys...)
	s.count = 0
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestHitWindow_SetsTTLOnFirstHit(t *testing.T) {
	rc := &stubCounter{}
	ctx := context.Background()

	n, err := hitWindow(ctx, rc, "rl:test:60:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, rc.ttl)

	rc.ttl = 0
	n, err = hitWindow(ctx, rc, "rl:test:60:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Zero(t, rc.ttl, "only the first hit sets the ttl")
	assert.Empty(t, rc.deleted)
}

func TestHitWindow_DropsKeyWhenExpireFails(t *testing.T) {
	rc := &stubCounter{expireErr: errors.New("connection reset")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := hitWindow(ctx, rc, "rl:test:60:1.2.3.4", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, []string{"rl:test:60:1.2.3.4"}, rc.deleted)

	// the next request starts a fresh window instead of counting forever
	rc.expireErr = nil
	n, err := hitWindow(context.Background(), rc, "rl:test:60:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, rc.ttl)
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedisRateLimitIntegration(t *testing.T) {
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

	rc := cache.Connect(addr, os.Getenv("REDIS_PASSWORD"), db)
	require.NotNil(t, rc, "redis not reachable")
	UseRedis(rc)
	t.Cleanup(func() {
		UseRedis(nil)
		_ = rc.Close()
	})

	gin.SetMode(gin.TestMode)
	max := 2
	scope := "test-" + uuid.NewString()

	r := gin.New()
	r.GET("/test", RedisRateLimit(scope, max, 2*time.Second), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	for i := 0; i < max; i++ {
		res, err := http.Get(srv.URL + "/test")
		require.NoError(t, err)
		res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
	}

	res, err := http.Get(srv.URL + "/test")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "0", res.Header.Get("X-RateLimit-Remaining"))
}
