// Package handler exposes the read API consumed by the dashboard and the
// operator reload endpoint.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health returns a plain "ok" for load balancers and uptime checks.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
