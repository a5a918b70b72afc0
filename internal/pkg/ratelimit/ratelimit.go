package ratelimit

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/CleanCity/internal/pkg/cache"
	"github.com/ManuelReschke/CleanCity/internal/pkg/env"
	"github.com/ManuelReschke/CleanCity/internal/pkg/usercontext"
)

// limiterDatabase keeps limiter counters apart from the job queue (DB 0).
const limiterDatabase = 2

// NewStorage returns a redis backed fiber storage sharing the cache host.
func NewStorage() fiber.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")
	if opts := cache.Options(); opts != nil {
		if h, p, err := net.SplitHostPort(opts.Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if opts.Password != "" {
			password = opts.Password
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: limiterDatabase,
		Reset:    false,
	})
}

// New builds the API rate limiter. Authenticated callers are limited per
// user, anonymous ones per IP. storage may be nil for in-memory counters.
func New(storage fiber.Storage) fiber.Handler {
	max, err := strconv.Atoi(env.GetEnv("API_RATE_LIMIT", "120"))
	if err != nil || max <= 0 {
		max = 120
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := usercontext.GetUserID(c); id != 0 {
				return "user:" + strconv.FormatUint(uint64(id), 10)
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "too_many_requests",
				"message": "rate limit exceeded, retry in a minute",
			})
		},
	})
}
