package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/climate-map-go/internal/activation"
	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/session"
	"github.com/jengzang/climate-map-go/pkg/response"
)

// ComparisonHandler handles HTTP requests for the comparison selection
type ComparisonHandler struct {
	registry *session.Registry
}

// NewComparisonHandler creates a new comparison handler
func NewComparisonHandler(registry *session.Registry) *ComparisonHandler {
	return &ComparisonHandler{registry: registry}
}

func (h *ComparisonHandler) lookup(c *gin.Context) (*session.Session, bool) {
	s, ok := h.registry.Get(c.Param("sid"))
	if !ok {
		response.NotFound(c, "Session not found")
	}
	return s, ok
}

func comparisonResponse(entries []models.ComparisonEntry) models.ComparisonResponse {
	return models.ComparisonResponse{
		Entries:  entries,
		Count:    len(entries),
		Capacity: models.MaxComparisonStations,
	}
}

// AddStationRequest names the station to add to the selection.
type AddStationRequest struct {
	StationID string `json:"stationId" binding:"required"`
}

// AddStation adds a station to the comparison selection.
// POST /api/v1/sessions/:sid/comparison
func (h *ComparisonHandler) AddStation(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var req AddStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	var addErr error
	s.WithLock(func() {
		addErr = s.Coordinator.AddStation(c.Request.Context(), req.StationID)
	})

	switch {
	case errors.Is(addErr, activation.ErrUnknownStation):
		response.NotFound(c, "Station not found")
	case errors.Is(addErr, activation.ErrComparisonFull):
		response.Conflict(c, "Comparison selection is full")
	case errors.Is(addErr, activation.ErrAlreadySelected):
		response.Conflict(c, "Station already selected")
	case addErr != nil:
		response.InternalError(c, "Failed to add station")
	default:
		response.Success(c, comparisonResponse(s.Coordinator.Selection()))
	}
}

// RemoveStation removes one station from the selection.
// DELETE /api/v1/sessions/:sid/comparison/:id
func (h *ComparisonHandler) RemoveStation(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	s.WithLock(func() {
		s.Coordinator.RemoveStation(c.Param("id"))
	})
	response.Success(c, comparisonResponse(s.Coordinator.Selection()))
}

// Clear empties the selection and its series cache.
// DELETE /api/v1/sessions/:sid/comparison
func (h *ComparisonHandler) Clear(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	s.WithLock(func() {
		s.Coordinator.Clear()
	})
	response.Success(c, comparisonResponse(nil))
}

// GetSelection returns the current selection.
// GET /api/v1/sessions/:sid/comparison
func (h *ComparisonHandler) GetSelection(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}
	response.Success(c, comparisonResponse(s.Coordinator.Selection()))
}

// GetSeries returns the monthly series of every selected station.
// GET /api/v1/sessions/:sid/comparison/series
func (h *ComparisonHandler) GetSeries(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var result []models.ComparisonSeries
	s.WithLock(func() {
		result = s.Coordinator.ComparisonSeries(c.Request.Context())
	})
	response.Success(c, gin.H{
		"series": result,
		"mode":   s.Coordinator.Mode(),
	})
}
