package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/charlesng35/collegehub/pkg/errors"
	"github.com/charlesng35/collegehub/pkg/logger"
	"github.com/charlesng35/collegehub/pkg/response"
)

// ErrTooManyRequests is returned once a client exhausts its window.
var ErrTooManyRequests = errors.New("RATE_LIMITED", "Too many requests, try again later", http.StatusTooManyRequests)

// RateStore counts requests per key within a fixed window.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// RateLimit limits requests per (client IP, route) using the supplied store.
// Store failures let the request through.
func RateLimit(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		key := "ratelimit:" + c.ClientIP() + "|" + c.FullPath()
		count, ttl, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			logger.WithModule("http").Warn("rate limit store", zap.Error(err))
			c.Next()
			return
		}

		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))

		if count > maxRequests {
			response.Error(c, ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

// memoryRateStoreSweepInterval bounds how often expired counters are dropped in bulk.
const memoryRateStoreSweepInterval = time.Minute

// memoryRateStore provides process-local rate limiting. It is concurrency-safe.
type memoryRateStore struct {
	mu        sync.Mutex
	data      map[string]*memoryCounter
	clock     func() time.Time
	lastSweep time.Time
}

type memoryCounter struct {
	count     int
	windowEnd time.Time
}

// NewMemoryRateStore constructs an in-memory rate store.
// An expired counter restarts on its next hit; the rest are swept at most once a minute.
func NewMemoryRateStore() RateStore {
	return &memoryRateStore{
		data:  make(map[string]*memoryCounter),
		clock: time.Now,
	}
}

func (s *memoryRateStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= memoryRateStoreSweepInterval {
		s.sweep(now)
	}

	counter, ok := s.data[key]
	if !ok || now.After(counter.windowEnd) {
		counter = &memoryCounter{windowEnd: now.Add(window)}
		s.data[key] = counter
	}
	counter.count++
	return counter.count, counter.windowEnd.Sub(now), nil
}

// sweep drops every expired counter. Callers hold s.mu.
func (s *memoryRateStore) sweep(now time.Time) {
	for k, counter := range s.data {
		if now.After(counter.windowEnd) {
			delete(s.data, k)
		}
	}
	s.lastSweep = now
}

// redisRateStore shares counters between instances.
type redisRateStore struct {
	client redis.UniversalClient
}

// NewRedisRateStore builds a RateStore on INCR with a key expiry.
func NewRedisRateStore(client redis.UniversalClient) RateStore {
	if client == nil {
		return nil
	}
	return &redisRateStore{client: client}
}

func (s *redisRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("rate limit: redis: %w", err)
	}
	return int(incr.Val()), ttl.Val(), nil
}
