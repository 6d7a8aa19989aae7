package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/logging"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/merge"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/model"
	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/source"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// MergedHandler serves the merged analysis table built from the current
// source files.
type MergedHandler struct {
	// Dataset reads and reconciles the configured sources.
	Dataset func() (model.Dataset, error)
}

type mergedPage struct {
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
	Items  []model.MergedRecord `json:"items"`
}

// List handles GET /v1/merged?limit=&offset=&include_series=.
func (h *MergedHandler) List(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultPageLimit)
	if err != nil || limit < 1 || limit > maxPageLimit {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be between 1 and 1000"})
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "offset must be a non-negative integer"})
	}
	opts := merge.DefaultOptions()
	if v := c.QueryParam("include_series"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "include_series must be a boolean"})
		}
		opts.IncludeSeries = b
	}

	ds, err := h.Dataset()
	if err != nil {
		logging.Error().Err(err).Msg("merged: read sources failed")
		if errors.Is(err, source.ErrMissingInput) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "source files not available"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "source files could not be read"})
	}
	records := merge.Build(ds.Users, ds.Content, ds.Sessions, opts)

	page := mergedPage{Total: len(records), Limit: limit, Offset: offset, Items: []model.MergedRecord{}}
	if offset < len(records) {
		end := min(offset+limit, len(records))
		page.Items = records[offset:end]
	}
	return c.JSON(http.StatusOK, page)
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
