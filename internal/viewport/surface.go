package viewport

import "github.com/jengzang/climate-map-go/internal/models"

// Marker is an opaque live marker object owned by the rendering surface.
// The manager only ever holds and hands back references; it never inspects
// them.
type Marker any

// ContentProvider produces the popup content for a station when its marker
// is opened. Injecting it keeps the manager decoupled from any templating
// or translation mechanism.
type ContentProvider func(st models.StationRecord) string

// Surface is the capability interface over the map rendering engine. The
// manager calls it to materialize markers, swap the heat layer in and out,
// and move the viewport.
type Surface interface {
	// NewMarker creates a marker object for the station, bound to the
	// given content provider. The marker starts detached.
	NewMarker(st models.StationRecord, content ContentProvider) Marker

	AttachMarker(m Marker)
	DetachMarker(m Marker)

	ShowHeatLayer(points []models.HeatmapPoint)
	HideHeatLayer()

	// CenterOn moves the viewport; the host reports the resulting settle
	// event back through SetViewport.
	CenterOn(lat, lon float64, zoom int)
}
