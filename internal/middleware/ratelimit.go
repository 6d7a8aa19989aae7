package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/config"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/logging"
)

// takeScript refills the bucket for the time elapsed since the last call,
// then takes one token if there is one. It returns
// {allowed, tokens left, ms until the next token}. The key expires once a
// full bucket would have refilled.
var takeScript = redis.NewScript(`
	local capacity = tonumber(ARGV[1])
	local per_ms = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local state = redis.call('HMGET', KEYS[1], 'tokens', 'at')
	local tokens = tonumber(state[1]) or capacity
	local at = tonumber(state[2]) or now
	tokens = math.min(capacity, tokens + math.max(0, now - at) * per_ms)

	local allowed, wait = 0, 0
	if tokens >= 1 then
		allowed = 1
		tokens = tokens - 1
	else
		wait = math.ceil((1 - tokens) / per_ms)
	end
	redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'at', now)
	redis.call('PEXPIRE', KEYS[1], math.ceil(capacity / per_ms))
	return {allowed, math.floor(tokens), wait}
`)

type decision struct {
	allowed    bool
	remaining  int64
	retryAfter time.Duration
}

func takeToken(ctx context.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string) (decision, error) {
	perMs := cfg.RefillPerSecond / 1000
	vals, err := takeScript.Run(ctx, rdb, []string{key}, cfg.Capacity, perMs, time.Now().UnixMilli()).Int64Slice()
	if err != nil {
		return decision{}, err
	}
	if len(vals) != 3 {
		return decision{}, redis.Nil
	}
	return decision{
		allowed:    vals[0] == 1,
		remaining:  vals[1],
		retryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// RateLimit throttles requests per key with a Redis token bucket. A nil
// client disables it and Redis errors let the request through.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !cfg.Enabled || rdb == nil {
			return next
		}
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			d, err := takeToken(c.Request().Context(), rdb, cfg, key)
			if err != nil {
				logging.Debug().Err(err).Str("key", key).Msg("ratelimit: bucket unavailable")
				return next(c)
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
			if d.allowed {
				return next(c)
			}
			secs := int(math.Ceil(d.retryAfter.Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

// rateKey buckets by client address, by authenticated subject (falling
// back to the address), or by address and route.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		return cfg.Prefix + ":ip:" + ip
	case "subject":
		if sub := currentUserID(c); sub != "anon" {
			return cfg.Prefix + ":sub:" + sub
		}
		return cfg.Prefix + ":ip:" + ip
	default:
		return cfg.Prefix + ":ip:" + ip + ":" + c.Request().Method + " " + c.Path()
	}
}
