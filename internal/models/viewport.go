package models

// Bounds is a geographic bounding box in degrees.
type Bounds struct {
	MinLat float64 `json:"minLat" form:"minLat"`
	MinLon float64 `json:"minLon" form:"minLon"`
	MaxLat float64 `json:"maxLat" form:"maxLat"`
	MaxLon float64 `json:"maxLon" form:"maxLon"`
}

// ViewportState is the transient state of the map viewport, recomputed on
// every pan/zoom settle event.
type ViewportState struct {
	Bounds Bounds `json:"bounds"`
	Zoom   int    `json:"zoom" form:"zoom"`
}
