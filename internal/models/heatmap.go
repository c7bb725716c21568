package models

// HeatmapPoint represents a single weighted point in the heatmap
type HeatmapPoint struct {
	Lat       float64 `json:"lat"`       // Latitude
	Lng       float64 `json:"lng"`       // Longitude
	Intensity float64 `json:"intensity"` // Normalized 0-1
}

// HeatmapResponse represents the heatmap API response
type HeatmapResponse struct {
	Points []HeatmapPoint `json:"points"`
	Count  int            `json:"count"`
}
