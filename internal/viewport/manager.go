package viewport

import (
	"log"

	"github.com/jengzang/climate-map-go/internal/catalog"
	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/spatial"
)

// DefaultZoomThreshold is the zoom level at which the map switches from the
// aggregated heat layer to individual station markers.
const DefaultZoomThreshold = 10

// Mode is the global rendering mode derived from the current zoom.
type Mode int

const (
	// ModeUnset is the state before the first viewport settle event.
	ModeUnset Mode = iota
	// ModeMarker renders individual markers (zoom >= threshold).
	ModeMarker
	// ModeHeatmap renders the aggregated heat layer (zoom < threshold).
	ModeHeatmap
)

// MarkerState tracks the lifecycle of one station's marker.
type MarkerState int

const (
	// StateUnseen means no marker object has been created yet.
	StateUnseen MarkerState = iota
	// StateActive means the marker object is attached to the visible layer.
	StateActive
	// StateDormant means the marker object exists but is detached.
	StateDormant
)

// handle associates a station with its live marker object. Once created a
// handle is never destroyed, only flipped between active and dormant, so
// rapid panning reuses marker objects instead of churning them.
type handle struct {
	station models.StationRecord
	marker  Marker
	state   MarkerState
}

// Manager owns the mapping from station to on-screen representation. All
// mutations happen on the host's event dispatch sequence; the manager does
// no locking of its own.
type Manager struct {
	catalog *catalog.Catalog
	surface Surface
	content ContentProvider

	zoomThreshold int

	mode     Mode
	lastZoom int
	handles  map[string]*handle

	heatPoints []models.HeatmapPoint
	heatBuilt  bool
	heatShown  bool

	// pendingStation is a deep-link target waiting for the settle event
	// that attaches its marker.
	pendingStation string
	onActivated    func(stationID string)
}

// Option configures a Manager.
type Option func(*Manager)

// WithZoomThreshold overrides the marker-eligible zoom threshold.
func WithZoomThreshold(threshold int) Option {
	return func(m *Manager) { m.zoomThreshold = threshold }
}

// WithActivationHandler registers the callback fired once a deep-linked
// station's marker has been attached by the settle path.
func WithActivationHandler(fn func(stationID string)) Option {
	return func(m *Manager) { m.onActivated = fn }
}

// NewManager creates a viewport marker manager on top of a catalog and a
// rendering surface.
func NewManager(cat *catalog.Catalog, surface Surface, content ContentProvider, opts ...Option) *Manager {
	m := &Manager{
		catalog:       cat,
		surface:       surface,
		content:       content,
		zoomThreshold: DefaultZoomThreshold,
		handles:       make(map[string]*handle),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetViewport processes a pan/zoom settle event. It only attaches and
// detaches layers on the surface; it never fails. Bounds with zero area are
// treated as an empty station set.
func (m *Manager) SetViewport(state models.ViewportState) {
	m.lastZoom = state.Zoom

	if state.Zoom < m.zoomThreshold {
		m.enterHeatmapMode()
		return
	}
	m.enterMarkerMode(state.Bounds)
}

// enterHeatmapMode detaches all markers and shows the cached heat layer.
func (m *Manager) enterHeatmapMode() {
	m.mode = ModeHeatmap

	for _, h := range m.handles {
		if h.state == StateActive {
			m.surface.DetachMarker(h.marker)
			h.state = StateDormant
		}
	}

	if !m.heatShown {
		m.surface.ShowHeatLayer(m.heatLayer())
		m.heatShown = true
	}
}

// heatLayer builds the aggregated layer from all non-missing stations. The
// layer is zoom and bounds independent, so it is built at most once per
// session.
func (m *Manager) heatLayer() []models.HeatmapPoint {
	if m.heatBuilt {
		return m.heatPoints
	}
	for _, st := range m.catalog.All() {
		if st.Missing {
			continue
		}
		m.heatPoints = append(m.heatPoints, models.HeatmapPoint{
			Lat:       st.Latitude,
			Lng:       st.Longitude,
			Intensity: 1,
		})
	}
	m.heatBuilt = true
	return m.heatPoints
}

// enterMarkerMode hides the heat layer if needed and reconciles the
// attached marker set against the stations inside the bounds. Detaches
// happen before attaches so the surface never sees a duplicate layer.
func (m *Manager) enterMarkerMode(bounds models.Bounds) {
	m.mode = ModeMarker

	if m.heatShown {
		m.surface.HideHeatLayer()
		m.heatShown = false
	}

	inBounds := make(map[string]models.StationRecord)
	if !spatial.IsZeroArea(bounds) {
		for _, st := range m.catalog.All() {
			if st.Missing {
				continue
			}
			if spatial.Contains(bounds, st.Latitude, st.Longitude) {
				inBounds[st.ID] = st
			}
		}
	}

	for id, h := range m.handles {
		if h.state == StateActive {
			if _, keep := inBounds[id]; !keep {
				m.surface.DetachMarker(h.marker)
				h.state = StateDormant
			}
		}
	}

	for id, st := range inBounds {
		h, ok := m.handles[id]
		if !ok {
			h = &handle{
				station: st,
				marker:  m.surface.NewMarker(st, m.content),
				state:   StateDormant,
			}
			m.handles[id] = h
		}
		if h.state != StateActive {
			m.surface.AttachMarker(h.marker)
			h.state = StateActive
		}
	}

	if m.pendingStation != "" {
		if h, ok := m.handles[m.pendingStation]; ok && h.state == StateActive {
			id := m.pendingStation
			m.pendingStation = ""
			if m.onActivated != nil {
				m.onActivated(id)
			}
		}
	}
}

// ActivateStation handles a deep-link request: center and zoom the viewport
// so the station is visible at marker-eligible zoom, then signal activation
// once the resulting settle event has attached its marker. Unknown ids are
// logged and ignored.
func (m *Manager) ActivateStation(stationID string) {
	st, ok := m.catalog.FindByID(stationID)
	if !ok {
		log.Printf("viewport: ignoring activation of unknown station %q", stationID)
		return
	}

	zoom := m.lastZoom
	if zoom < m.zoomThreshold {
		zoom = m.zoomThreshold
	}
	m.pendingStation = stationID
	m.surface.CenterOn(st.Latitude, st.Longitude, zoom)
}

// Mode returns the current global rendering mode.
func (m *Manager) Mode() Mode { return m.mode }

// ZoomThreshold returns the marker-eligible zoom threshold.
func (m *Manager) ZoomThreshold() int { return m.zoomThreshold }

// State returns the lifecycle state of one station's marker.
func (m *Manager) State(stationID string) MarkerState {
	if h, ok := m.handles[stationID]; ok {
		return h.state
	}
	return StateUnseen
}

// Attached returns the ids of all stations whose marker is currently on
// the visible layer.
func (m *Manager) Attached() []string {
	var ids []string
	for id, h := range m.handles {
		if h.state == StateActive {
			ids = append(ids, id)
		}
	}
	return ids
}

// HandleCount returns the number of marker objects created so far.
func (m *Manager) HandleCount() int { return len(m.handles) }

// HeatLayerShown reports whether the heat layer is currently attached.
func (m *Manager) HeatLayerShown() bool { return m.heatShown }
