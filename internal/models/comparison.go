package models

// MaxComparisonStations bounds the comparison selection. Adding beyond the
// bound is rejected, the oldest entry is never evicted.
const MaxComparisonStations = 3

// ComparisonEntry is one station the user selected for side-by-side charts.
type ComparisonEntry struct {
	StationID string `json:"stationId"`
	Name      string `json:"name"`
}

// ComparisonResponse represents the comparison selection API response
type ComparisonResponse struct {
	Entries  []ComparisonEntry `json:"entries"`
	Count    int               `json:"count"`
	Capacity int               `json:"capacity"`
}

// ComparisonSeries is the aggregate monthly chart payload for one
// selected station.
type ComparisonSeries struct {
	StationID string            `json:"stationId"`
	Name      string            `json:"name"`
	Points    []TimeSeriesPoint `json:"points"`
}
