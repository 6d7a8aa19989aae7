package router // package router wires handlers and middleware onto Echo

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/handler"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/middleware"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/utils"
)

// Handlers bundles the API handlers.
type Handlers struct {
	Verification *handler.VerificationHandler
	Merged       *handler.MergedHandler
	Reload       *handler.ReloadHandler
}

// Options carries the middleware applied to route groups. Nil middleware
// is skipped.
type Options struct {
	JWTSecret string
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// New returns an Echo instance with every route registered.
func New(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = jsonSerializer{}
	RegisterRoutes(e)
	RegisterAPI(e, h, opts)
	return e
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAPI registers the /v1 routes. Reads go through the rate limiter
// and the response cache; reload requires an operator token and is never
// cached.
func RegisterAPI(e *echo.Echo, h Handlers, opts Options) {
	read := nonNil(opts.RateLimit, opts.Cache)
	e.GET("/v1/verification", h.Verification.Get, read...)
	e.GET("/v1/merged", h.Merged.List, read...)

	e.POST("/v1/reload", h.Reload.Reload, nonNil(
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(utils.RoleOperator),
		opts.RateLimit,
	)...)
}

func nonNil(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := mws[:0:0]
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
