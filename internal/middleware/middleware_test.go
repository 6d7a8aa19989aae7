package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/config"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/utils"
)

const secret = "test-secret"

func protected() *echo.Echo {
	e := echo.New()
	e.POST("/reload", func(c echo.Context) error {
		return c.String(http.StatusOK, currentUserID(c))
	}, JWTAuth(secret), RequireRole(utils.RoleOperator))
	return e
}

func do(e *echo.Echo, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWTAuthAcceptsOperatorToken(t *testing.T) {
	tok, err := utils.NewOperatorToken(secret, "ops-1", time.Minute)
	require.NoError(t, err)

	rec := do(protected(), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ops-1", rec.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	exp := time.Now().Add(time.Minute).Unix()
	tests := []struct {
		name string
		auth string
		code int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"),
			jwt.MapClaims{"sub": "x", "role": "operator", "exp": exp}), http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret),
			jwt.MapClaims{"sub": "x", "role": "operator", "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
		{"other algorithm", "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(secret),
			jwt.MapClaims{"sub": "x", "role": "operator", "exp": exp}), http.StatusUnauthorized},
		{"wrong role", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret),
			jwt.MapClaims{"sub": "x", "role": "viewer", "exp": exp}), http.StatusForbidden},
		{"no role", "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(secret),
			jwt.MapClaims{"sub": "x", "exp": exp}), http.StatusForbidden},
	}
	e := protected()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, do(e, tt.auth).Code)
		})
	}
}

func newContext(method, target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "10.0.0.7:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/merged")
	return c
}

func TestRateKey(t *testing.T) {
	c := newContext(http.MethodGet, "/v1/merged?limit=5")
	cfg := config.RateLimitConfig{Prefix: "rl"}

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:10.0.0.7", rateKey(cfg, c))
	cfg.KeyStrategy = "subject"
	assert.Equal(t, "rl:ip:10.0.0.7", rateKey(cfg, c), "anonymous callers fall back to their address")
	c.Set("user_id", "ops-1")
	assert.Equal(t, "rl:sub:ops-1", rateKey(cfg, c))
	cfg.KeyStrategy = ""
	assert.Equal(t, "rl:ip:10.0.0.7:GET /v1/merged", rateKey(cfg, c))
}

func TestCacheKeyIsCanonical(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Prefix: "etlcache"}, nil)
	a := rc.key(3, newContext(http.MethodGet, "/v1/merged?limit=5&offset=10"))
	b := rc.key(3, newContext(http.MethodGet, "/v1/merged?offset=10&limit=5"))
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "etlcache:3:"))

	assert.NotEqual(t, a, rc.key(3, newContext(http.MethodGet, "/v1/merged?limit=6&offset=10")))
	assert.NotEqual(t, a, rc.key(4, newContext(http.MethodGet, "/v1/merged?limit=5&offset=10")),
		"a new generation never sees old entries")
}

func TestBodyRecorderOverflow(t *testing.T) {
	rec := httptest.NewRecorder()
	br := &bodyRecorder{ResponseWriter: rec, max: 4}
	_, _ = br.Write([]byte("abc"))
	assert.False(t, br.overflow)
	_, _ = br.Write([]byte("de"))
	assert.True(t, br.overflow)
	assert.Zero(t, br.buf.Len())
	assert.Equal(t, "abcde", rec.Body.String(), "the client still gets the full body")
}

func TestMiddlewareWithoutRedisPassesThrough(t *testing.T) {
	cache := NewResponseCache(config.CacheConfig{Enabled: true}, nil)
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "hi") },
		RateLimit(config.RateLimitConfig{Enabled: true}, nil),
		cache.Middleware())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.NoError(t, cache.Invalidate(context.Background()))
}
