package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/climate-map-go/internal/catalog"
	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/series"
	"github.com/jengzang/climate-map-go/pkg/response"
)

// SeriesHandler handles HTTP requests for per-station chart series
type SeriesHandler struct {
	catalog *catalog.Catalog
	loader  *series.Loader
}

// NewSeriesHandler creates a new series handler
func NewSeriesHandler(cat *catalog.Catalog, loader *series.Loader) *SeriesHandler {
	return &SeriesHandler{catalog: cat, loader: loader}
}

// GetSeries returns one chart series for a station.
// GET /api/v1/stations/:id/series/:kind
func (h *SeriesHandler) GetSeries(c *gin.Context) {
	stationID := c.Param("id")
	if _, ok := h.catalog.FindByID(stationID); !ok {
		response.NotFound(c, "Station not found")
		return
	}

	kind := models.SeriesKind(c.Param("kind"))
	var (
		points []models.TimeSeriesPoint
		err    error
	)
	switch kind {
	case models.SeriesDaily:
		points, err = h.loader.LoadDaily(c.Request.Context(), stationID)
	case models.SeriesMonthly:
		points, err = h.loader.LoadMonthly(c.Request.Context(), stationID)
	case models.SeriesMonthlyHistory:
		points, err = h.loader.LoadMonthlyHistory(c.Request.Context(), stationID)
	default:
		response.BadRequest(c, "Unknown series kind")
		return
	}

	if errors.Is(err, series.ErrNoHistoryData) {
		response.Success(c, models.SeriesResponse{
			StationID: stationID,
			Kind:      kind,
			NoData:    true,
		})
		return
	}
	if errors.Is(err, series.ErrNotFound) {
		response.NotFound(c, "Series not found")
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to load series")
		return
	}

	response.Success(c, models.SeriesResponse{
		StationID: stationID,
		Kind:      kind,
		Points:    points,
		Count:     len(points),
	})
}
