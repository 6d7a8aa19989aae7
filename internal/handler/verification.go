package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/logging"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
)

// Reporter produces an integrity report; *repository.IntegrityRepo is one.
type Reporter interface {
	Report(ctx context.Context) (model.IntegrityReport, error)
}

// VerificationHandler serves the current integrity report of the
// relational store.
type VerificationHandler struct {
	Reporter Reporter
}

type verificationResponse struct {
	model.IntegrityReport
	Passed bool `json:"passed"`
}

// Get handles GET /v1/verification.
func (h *VerificationHandler) Get(c echo.Context) error {
	rep, err := h.Reporter.Report(c.Request().Context())
	if err != nil {
		logging.Error().Err(err).Msg("verification query failed")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "verification unavailable"})
	}
	return c.JSON(http.StatusOK, verificationResponse{IntegrityReport: rep, Passed: rep.Passed()})
}
