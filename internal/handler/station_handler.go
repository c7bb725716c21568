package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/climate-map-go/internal/catalog"
	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/spatial"
	"github.com/jengzang/climate-map-go/pkg/response"
)

// StationHandler handles HTTP requests for the station catalog
type StationHandler struct {
	catalog *catalog.Catalog
}

// NewStationHandler creates a new station handler
func NewStationHandler(cat *catalog.Catalog) *StationHandler {
	return &StationHandler{catalog: cat}
}

// ListStations returns the full catalog, optionally filtered to a
// bounding box.
// GET /api/v1/stations?minLat=&minLon=&maxLat=&maxLon=
func (h *StationHandler) ListStations(c *gin.Context) {
	var bounds models.Bounds
	if err := c.ShouldBindQuery(&bounds); err != nil {
		response.BadRequest(c, "Invalid bounds")
		return
	}

	all := h.catalog.All()
	filtered := all[:0:0]
	hasBounds := bounds != (models.Bounds{})
	for _, st := range all {
		if hasBounds && !spatial.Contains(bounds, st.Latitude, st.Longitude) {
			continue
		}
		filtered = append(filtered, st)
	}

	response.Success(c, models.StationsResponse{
		Stations: filtered,
		Count:    len(filtered),
	})
}

// GetStation returns one station by id.
// GET /api/v1/stations/:id
func (h *StationHandler) GetStation(c *gin.Context) {
	st, ok := h.catalog.FindByID(c.Param("id"))
	if !ok {
		response.NotFound(c, "Station not found")
		return
	}
	response.Success(c, st)
}

// NearestQuery locates the station closest to a coordinate.
type NearestQuery struct {
	Lat float64 `form:"lat" binding:"required"`
	Lon float64 `form:"lon" binding:"required"`
}

// NearestResponse is the closest usable station and its distance.
type NearestResponse struct {
	Station    models.StationRecord `json:"station"`
	DistanceKm float64              `json:"distanceKm"`
}

// Nearest returns the closest station with usable data.
// GET /api/v1/stations/nearest?lat=&lon=
func (h *StationHandler) Nearest(c *gin.Context) {
	var q NearestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid coordinates")
		return
	}

	var (
		best     models.StationRecord
		bestDist float64
		found    bool
	)
	for _, st := range h.catalog.All() {
		if st.Missing {
			continue
		}
		d := spatial.HaversineDistance(q.Lat, q.Lon, st.Latitude, st.Longitude)
		if !found || d < bestDist {
			best, bestDist, found = st, d, true
		}
	}
	if !found {
		response.NotFound(c, "No stations loaded")
		return
	}

	response.Success(c, NearestResponse{
		Station:    best,
		DistanceKm: bestDist / 1000,
	})
}

// Heatmap returns the aggregated heat layer over all stations with
// usable data.
// GET /api/v1/stations/heatmap
func (h *StationHandler) Heatmap(c *gin.Context) {
	var points []models.HeatmapPoint
	for _, st := range h.catalog.All() {
		if st.Missing {
			continue
		}
		points = append(points, models.HeatmapPoint{
			Lat:       st.Latitude,
			Lng:       st.Longitude,
			Intensity: 1,
		})
	}
	response.Success(c, models.HeatmapResponse{
		Points: points,
		Count:  len(points),
	})
}
