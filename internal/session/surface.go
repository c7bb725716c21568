package session

import (
	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/viewport"
)

// MarkerPatch describes one marker object the client must create.
type MarkerPatch struct {
	StationID string  `json:"stationId"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Popup     string  `json:"popup,omitempty"`
}

// CenterCommand tells the client to move its viewport. The client reports
// the resulting settle event back through the viewport endpoint.
type CenterCommand struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom int     `json:"zoom"`
}

// ChartPatch carries one rendered series for the client's chart panel.
type ChartPatch struct {
	StationID string                   `json:"stationId"`
	Kind      models.SeriesKind        `json:"kind"`
	Points    []models.TimeSeriesPoint `json:"points,omitempty"`
	NoData    bool                     `json:"noData,omitempty"`
}

// Patch is the set of surface mutations one request produced, replayed by
// the client against its live map.
type Patch struct {
	Created  []MarkerPatch `json:"created,omitempty"`
	Attached []string      `json:"attached,omitempty"`
	Detached []string      `json:"detached,omitempty"`

	HeatLayer []models.HeatmapPoint `json:"heatLayer,omitempty"`
	HeatShown *bool                 `json:"heatShown,omitempty"`

	Center *CenterCommand `json:"center,omitempty"`
	// Activated is set once a deep-linked station's marker is attached.
	Activated string `json:"activated,omitempty"`

	Charts []ChartPatch `json:"charts,omitempty"`
}

// patchSurface records every surface call into the pending patch. It backs
// both the marker manager and the chart coordinator of one session.
type patchSurface struct {
	patch Patch
}

func (s *patchSurface) take() Patch {
	p := s.patch
	s.patch = Patch{}
	return p
}

func (s *patchSurface) NewMarker(st models.StationRecord, content viewport.ContentProvider) viewport.Marker {
	mp := MarkerPatch{StationID: st.ID, Lat: st.Latitude, Lon: st.Longitude}
	if content != nil {
		mp.Popup = content(st)
	}
	s.patch.Created = append(s.patch.Created, mp)
	return st.ID
}

func (s *patchSurface) AttachMarker(m viewport.Marker) {
	s.patch.Attached = append(s.patch.Attached, m.(string))
}

func (s *patchSurface) DetachMarker(m viewport.Marker) {
	s.patch.Detached = append(s.patch.Detached, m.(string))
}

func (s *patchSurface) ShowHeatLayer(points []models.HeatmapPoint) {
	shown := true
	s.patch.HeatLayer = points
	s.patch.HeatShown = &shown
}

func (s *patchSurface) HideHeatLayer() {
	shown := false
	s.patch.HeatLayer = nil
	s.patch.HeatShown = &shown
}

func (s *patchSurface) CenterOn(lat, lon float64, zoom int) {
	s.patch.Center = &CenterCommand{Lat: lat, Lon: lon, Zoom: zoom}
}

// Alive is always true in API mode: the response is being assembled for
// the very request that triggered the load.
func (s *patchSurface) Alive(string) bool { return true }

func (s *patchSurface) RenderDaily(stationID string, points []models.TimeSeriesPoint) {
	s.patch.Charts = append(s.patch.Charts, ChartPatch{
		StationID: stationID, Kind: models.SeriesDaily, Points: points,
	})
}

func (s *patchSurface) RenderMonthly(stationID string, points []models.TimeSeriesPoint) {
	s.patch.Charts = append(s.patch.Charts, ChartPatch{
		StationID: stationID, Kind: models.SeriesMonthly, Points: points,
	})
}

func (s *patchSurface) RenderHistory(stationID string, points []models.TimeSeriesPoint) {
	s.patch.Charts = append(s.patch.Charts, ChartPatch{
		StationID: stationID, Kind: models.SeriesMonthlyHistory, Points: points,
	})
}

func (s *patchSurface) RenderNoHistory(stationID string) {
	s.patch.Charts = append(s.patch.Charts, ChartPatch{
		StationID: stationID, Kind: models.SeriesMonthlyHistory, NoData: true,
	})
}
