package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/logging"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/service"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/source"
)

// Runner runs one pipeline batch; *service.Pipeline is one.
type Runner interface {
	Run(ctx context.Context) (service.RunSummary, error)
}

// Invalidator drops cached read responses; *middleware.ResponseCache is
// one.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// ReloadHandler lets an operator trigger a full reload. Cache, when set, is
// invalidated after every run that reached the stores.
type ReloadHandler struct {
	Runner Runner
	Cache  Invalidator
}

// Reload handles POST /v1/reload. It blocks until the run finishes and
// returns its summary.
func (h *ReloadHandler) Reload(c echo.Context) error {
	sum, err := h.Runner.Run(c.Request().Context())
	if len(sum.Tables) > 0 && h.Cache != nil {
		if cerr := h.Cache.Invalidate(context.WithoutCancel(c.Request().Context())); cerr != nil {
			logging.Warn().Err(cerr).Str("run_id", sum.RunID).Msg("cache invalidation failed")
		}
	}
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, sum)
	case errors.Is(err, service.ErrRunInProgress):
		return c.JSON(http.StatusConflict, echo.Map{"error": "a load run is already in progress"})
	case errors.Is(err, source.ErrMissingInput), errors.Is(err, source.ErrMalformedRecord):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error(), "run_id": sum.RunID})
	default:
		logging.Error().Err(err).Str("run_id", sum.RunID).Msg("reload finished with errors")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load finished with errors", "summary": sum})
	}
}
