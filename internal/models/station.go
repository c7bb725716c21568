package models

// StationRecord represents one weather station from the GHCN-D network.
// Records are loaded once at startup and never mutated afterwards.
type StationRecord struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	State     string  `json:"state,omitempty"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Elevation float64 `json:"elevation"`
	WMOID     string  `json:"wmoId,omitempty"`

	// Missing marks stations without usable chart data. They are excluded
	// from both marker placement and heat aggregation.
	Missing bool `json:"missing"`
}

// StationsResponse represents the station list API response
type StationsResponse struct {
	Stations []StationRecord `json:"stations"`
	Count    int             `json:"count"`
}
