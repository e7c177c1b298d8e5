package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"

	"github.com/equidadeplus/equidade_backend/pkg/constants"
)

const (
	defaultLimitMax        = 120
	defaultLimitExpiration = time.Minute
)

// NewLimiterWithRedis keeps the sliding window counters in Redis so every
// instance shares the same budget per client.
func NewLimiterWithRedis(rdb *redis.Client, max int, expiration time.Duration) fiber.Handler {
	if max <= 0 {
		max = defaultLimitMax
	}
	if expiration <= 0 {
		expiration = defaultLimitExpiration
	}
	storage := fiberredis.NewFromConnection(rdb)
	return limiter.New(limiter.Config{
		Storage: storage,

		// sliding window
		Max:               max,
		Expiration:        expiration,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c fiber.Ctx) string {
			return constants.LimiterKeyPrefix + c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests"})
		},
	})
}
