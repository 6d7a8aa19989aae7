package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/config"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/logging"
)

// ResponseCache stores successful GET responses in Redis. Keys embed the
// data generation, and Invalidate moves to a new generation, so a reload
// makes every earlier entry unreachable at once. A ResponseCache without
// a client does nothing.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewResponseCache returns a cache on rdb. A nil rdb or a disabled config
// yields a pass-through cache.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if !cfg.Enabled {
		rdb = nil
	}
	return &ResponseCache{cfg: cfg, rdb: rdb}
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder keeps a copy of the body while it is written through. A body
// larger than max is dropped from the copy and never cached.
type bodyRecorder struct {
	http.ResponseWriter
	buf      bytes.Buffer
	max      int
	overflow bool
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	if !r.overflow {
		if r.max > 0 && r.buf.Len()+len(b) > r.max {
			r.overflow = true
			r.buf.Reset()
		} else {
			r.buf.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}

// Middleware serves hits and records misses. Redis failures skip the
// cache for that request.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if rc.rdb == nil {
			return next
		}
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			gen, err := rc.generation(ctx)
			if err != nil {
				logging.Debug().Err(err).Msg("cache: generation lookup failed")
				return next(c)
			}
			key := rc.key(gen, c)

			if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				var hit cachedResponse
				if json.Unmarshal(bs, &hit) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(hit.Status, hit.ContentType, hit.Body)
				}
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, max: rc.cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if c.Response().Status != http.StatusOK || rec.overflow {
				return nil
			}
			payload, err := json.Marshal(cachedResponse{
				Status:      http.StatusOK,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.buf.Bytes(),
			})
			if err == nil {
				_ = rc.rdb.Set(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err()
			}
			return nil
		}
	}
}

// Invalidate starts a new cache generation. It is a no-op without Redis.
func (rc *ResponseCache) Invalidate(ctx context.Context) error {
	if rc.rdb == nil {
		return nil
	}
	return rc.rdb.Incr(ctx, rc.cfg.GenerationKey()).Err()
}

func (rc *ResponseCache) generation(ctx context.Context) (int64, error) {
	gen, err := rc.rdb.Get(ctx, rc.cfg.GenerationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// key hashes the route with its query parameters in canonical order, so
// ?limit=5&offset=0 and ?offset=0&limit=5 share an entry.
func (rc *ResponseCache) key(gen int64, c echo.Context) string {
	sum := sha256.Sum256([]byte(c.Path() + "?" + c.QueryParams().Encode()))
	return rc.cfg.Prefix + ":" + strconv.FormatInt(gen, 10) + ":" + hex.EncodeToString(sum[:16])
}
