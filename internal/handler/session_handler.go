package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/session"
	"github.com/jengzang/climate-map-go/pkg/response"
)

// SessionHandler handles HTTP requests for map sessions
type SessionHandler struct {
	registry *session.Registry
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(registry *session.Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

// CreateSessionResponse is the payload for a freshly created session.
type CreateSessionResponse struct {
	SessionID     string `json:"sessionId"`
	ZoomThreshold int    `json:"zoomThreshold"`
}

// CreateSession opens a new map session.
// POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	s := h.registry.Create()
	response.Success(c, CreateSessionResponse{
		SessionID:     s.ID,
		ZoomThreshold: s.Manager.ZoomThreshold(),
	})
}

// DeleteSession closes a session.
// DELETE /api/v1/sessions/:sid
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	h.registry.Delete(c.Param("sid"))
	response.Success(c, nil)
}

func (h *SessionHandler) lookup(c *gin.Context) (*session.Session, bool) {
	s, ok := h.registry.Get(c.Param("sid"))
	if !ok {
		response.NotFound(c, "Session not found")
	}
	return s, ok
}

// SetViewport processes a pan/zoom settle event and returns the surface
// patch the client must replay. When the settle completes a pending
// deep-link activation, the station's chart series are loaded and
// included in the same patch.
// POST /api/v1/sessions/:sid/viewport
func (h *SessionHandler) SetViewport(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var state models.ViewportState
	if err := c.ShouldBindJSON(&state); err != nil {
		response.BadRequest(c, "Invalid viewport state")
		return
	}

	patch := s.WithLock(func() {
		s.Manager.SetViewport(state)
	})

	if patch.Activated != "" {
		charts := s.WithLock(func() {
			// Unknown ids cannot reach here; the manager vetted the
			// station before marking it pending.
			_ = s.Coordinator.Activate(c.Request.Context(), patch.Activated)
		})
		patch.Charts = append(patch.Charts, charts.Charts...)
	}

	response.Success(c, patch)
}

// OpenStation handles a marker click: it loads the station's three chart
// series and returns them as chart patches.
// POST /api/v1/sessions/:sid/stations/:id/open
func (h *SessionHandler) OpenStation(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	stationID := c.Param("id")
	var activateErr error
	patch := s.WithLock(func() {
		activateErr = s.Coordinator.Activate(c.Request.Context(), stationID)
	})
	if activateErr != nil {
		response.NotFound(c, "Station not found")
		return
	}
	response.Success(c, patch)
}

// ActivateStation handles a deep link: the patch carries the center
// command; the activation itself completes on the next viewport settle.
// POST /api/v1/sessions/:sid/activate/:id
func (h *SessionHandler) ActivateStation(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	patch := s.WithLock(func() {
		s.Manager.ActivateStation(c.Param("id"))
	})
	if patch.Center == nil {
		response.NotFound(c, "Station not found")
		return
	}
	response.Success(c, patch)
}

// SetModeRequest selects the temperature projection for chart rendering.
type SetModeRequest struct {
	Mode models.SeriesMode `json:"mode" binding:"required"`
}

// SetMode switches between the extreme and percentile projections.
// POST /api/v1/sessions/:sid/mode
func (h *SessionHandler) SetMode(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var req SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if req.Mode != models.SeriesModeExtreme && req.Mode != models.SeriesModePercentile {
		response.BadRequest(c, "Unknown series mode")
		return
	}

	s.WithLock(func() {
		s.Coordinator.SetMode(req.Mode)
	})
	response.Success(c, gin.H{"mode": req.Mode})
}
