// Package ratelimit builds the request limiter for the public API.
package ratelimit

import (
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yfkiwi/growthPartnerAI/internal/pkg/config"
)

// StorageDatabase is the Redis database holding limiter counters, apart from
// the cache (0) and the job queue.
const StorageDatabase = 2

// NewStorage returns Redis-backed limiter storage sharing the cache
// connection settings, or nil when no cache client is available so the
// limiter keeps its counters in memory.
func NewStorage(cacheClient *goredis.Client) fiber.Storage {
	if cacheClient == nil {
		return nil
	}

	host := "localhost"
	port := 6379
	opts := cacheClient.Options()
	if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: opts.Password,
		Database: StorageDatabase,
		Reset:    false,
	})
}

// New creates the limiter middleware. Requests for which skip returns true
// are not counted. key defaults to the remote IP.
func New(cfg config.RateLimitConfig, storage fiber.Storage, key func(*fiber.Ctx) string, skip func(*fiber.Ctx) bool) fiber.Handler {
	limit := cfg.Max
	if limit <= 0 {
		limit = 60
	}
	if key == nil {
		key = func(c *fiber.Ctx) string { return c.IP() }
	}

	lc := limiter.Config{
		Max:          limit,
		Expiration:   cfg.Expiration,
		KeyGenerator: key,
		Next:         skip,
		LimitReached: func(c *fiber.Ctx) error {
			log.Warnf("[RateLimit] Limit reached for %s on %s", key(c), c.Path())
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests"})
		},
	}
	if storage != nil {
		lc.Storage = storage
	}
	return limiter.New(lc)
}
