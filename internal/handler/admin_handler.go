package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/climate-map-go/internal/catalog"
	"github.com/jengzang/climate-map-go/internal/repository"
	"github.com/jengzang/climate-map-go/internal/session"
	"github.com/jengzang/climate-map-go/pkg/response"
)

// AdminHandler handles authenticated maintenance requests
type AdminHandler struct {
	catalog  *catalog.Catalog
	stations *repository.StationRepository
	registry *session.Registry
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(cat *catalog.Catalog, stations *repository.StationRepository, registry *session.Registry) *AdminHandler {
	return &AdminHandler{catalog: cat, stations: stations, registry: registry}
}

// ReloadCatalog re-reads the station catalog from its source. New
// sessions see the updated catalog; existing sessions keep their marker
// handles.
// POST /api/v1/admin/catalog/reload
func (h *AdminHandler) ReloadCatalog(c *gin.Context) {
	if err := h.catalog.Load(); err != nil {
		response.InternalError(c, "Failed to reload catalog")
		return
	}
	response.Success(c, gin.H{"stations": h.catalog.Len()})
}

// SetMissingRequest flags or unflags a station as having no usable data.
type SetMissingRequest struct {
	Missing *bool `json:"missing" binding:"required"`
}

// SetMissing updates the missing flag in the station store. The change
// reaches the catalog on the next reload.
// PATCH /api/v1/admin/stations/:id/missing
func (h *AdminHandler) SetMissing(c *gin.Context) {
	var req SetMissingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := h.stations.SetMissing(c.Param("id"), *req.Missing); err != nil {
		response.InternalError(c, "Failed to update station")
		return
	}
	response.Success(c, nil)
}

// ListStations returns the station store contents.
// GET /api/v1/admin/stations
func (h *AdminHandler) ListStations(c *gin.Context) {
	stations, err := h.stations.ListStations()
	if err != nil {
		response.InternalError(c, "Failed to list stations")
		return
	}
	response.Success(c, gin.H{"stations": stations, "count": len(stations)})
}

// Sessions reports the live session count.
// GET /api/v1/admin/sessions
func (h *AdminHandler) Sessions(c *gin.Context) {
	response.Success(c, gin.H{"count": h.registry.Count()})
}
