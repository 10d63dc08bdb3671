package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"todolist/internal/core/telemetry"
	"todolist/pkg/config"
)

type RateLimitResult struct {
	Limit     int
	Remaining int
	Reset     time.Time
	Reached   bool
}

// RateLimitStore counts one request against key and reports whether it is
// still inside the window's budget.
type RateLimitStore interface {
	Take(ctx context.Context, key string, limit config.RouteLimit) (RateLimitResult, error)
}

type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// MemoryRateLimitStore keeps fixed windows in process memory.
type MemoryRateLimitStore struct {
	cache *cache.Cache
	mutex sync.Mutex
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *MemoryRateLimitStore) Take(ctx context.Context, key string, limit config.RouteLimit) (RateLimitResult, error) {
	now := time.Now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entry, found := s.cache.Get(key); found {
		rateLimitEntry := entry.(RateLimitEntry)

		if now.Before(rateLimitEntry.ResetTime) {
			if rateLimitEntry.Count >= limit.Requests {
				return RateLimitResult{Limit: limit.Requests, Reset: rateLimitEntry.ResetTime, Reached: true}, nil
			}

			rateLimitEntry.Count++
			s.cache.Set(key, rateLimitEntry, time.Until(rateLimitEntry.ResetTime))

			return RateLimitResult{
				Limit:     limit.Requests,
				Remaining: limit.Requests - rateLimitEntry.Count,
				Reset:     rateLimitEntry.ResetTime,
			}, nil
		}
	}

	resetTime := now.Add(limit.Window)
	s.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, limit.Window)

	return RateLimitResult{
		Limit:     limit.Requests,
		Remaining: limit.Requests - 1,
		Reset:     resetTime,
	}, nil
}

func (s *MemoryRateLimitStore) ItemCount() int {
	return s.cache.ItemCount()
}

// RedisRateLimitStore shares windows between instances through redis. One
// ulule limiter is kept per distinct rate.
type RedisRateLimitStore struct {
	store    limiter.Store
	mutex    sync.Mutex
	limiters map[limiter.Rate]*limiter.Limiter
}

func NewRedisRateLimitStore(client *redis.Client) (*RedisRateLimitStore, error) {
	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   "todolist_limiter",
		MaxRetry: 3,
	})

	if err != nil {
		return nil, fmt.Errorf("create redis limiter store: %w", err)
	}

	return &RedisRateLimitStore{
		store:    store,
		limiters: make(map[limiter.Rate]*limiter.Limiter),
	}, nil
}

func (s *RedisRateLimitStore) limiterFor(limit config.RouteLimit) *limiter.Limiter {
	rate := limiter.Rate{
		Period: limit.Window,
		Limit:  int64(limit.Requests),
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	instance, ok := s.limiters[rate]

	if !ok {
		instance = limiter.New(s.store, rate)
		s.limiters[rate] = instance
	}

	return instance
}

func (s *RedisRateLimitStore) Take(ctx context.Context, key string, limit config.RouteLimit) (RateLimitResult, error) {
	result, err := s.limiterFor(limit).Get(ctx, key)

	if err != nil {
		return RateLimitResult{}, err
	}

	return RateLimitResult{
		Limit:     int(result.Limit),
		Remaining: int(result.Remaining),
		Reset:     time.Unix(result.Reset, 0),
		Reached:   result.Reached,
	}, nil
}

// RateLimiter picks the limit for "METHOD /route", then "/route", then
// "default" and counts requests per client ip.
type RateLimiter struct {
	store   RateLimitStore
	routes  map[string]config.RouteLimit
	logger  *otelzap.Logger
	metrics *telemetry.AppMetrics
}

func NewRateLimiter(store RateLimitStore, routes map[string]config.RouteLimit, logger *otelzap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	return &RateLimiter{
		store:   store,
		routes:  routes,
		logger:  logger,
		metrics: metrics,
	}
}

func (rl *RateLimiter) limitFor(method, path string) (string, config.RouteLimit, bool) {
	methodPath := method + " " + path

	if limit, ok := rl.routes[methodPath]; ok {
		return methodPath, limit, true
	}

	if limit, ok := rl.routes[path]; ok {
		return path, limit, true
	}

	limit, ok := rl.routes["default"]
	return "default", limit, ok
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		route, limit, ok := rl.limitFor(c.Request.Method, path)

		if !ok {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", route, c.ClientIP())

		result, err := rl.store.Take(c.Request.Context(), key, limit)

		if err != nil {
			rl.logger.Ctx(c.Request.Context()).Error("Rate limit check failed",
				zap.String("key", key),
				zap.String("path", path),
				zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))

		if result.Reached {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), route)
			}

			rl.logger.Ctx(c.Request.Context()).Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", limit.Requests),
				zap.Duration("window", limit.Window))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       fmt.Sprintf("Too many requests. Limit: %d per %v", limit.Requests, limit.Window),
				"retry_after": int(time.Until(result.Reset).Seconds()),
			})
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), route)
		}

		c.Next()
	}
}
