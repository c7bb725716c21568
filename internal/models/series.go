package models

import "time"

// SeriesKind identifies one of the three per-station chart resources.
type SeriesKind string

const (
	SeriesDaily          SeriesKind = "daily"
	SeriesMonthly        SeriesKind = "monthly"
	SeriesMonthlyHistory SeriesKind = "monthly-history"
)

// SampleCounts carries the number of aggregated observations behind a
// monthly-history point.
type SampleCounts struct {
	TMin int `json:"tminCount"`
	TMax int `json:"tmaxCount"`
	Prcp int `json:"prcpCount"`
}

// TimeSeriesPoint is one chart data point. Both the extreme (absolute
// min/max) and percentile (P10/P90) temperature projections are always
// present so the display toggle never needs a refetch.
type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"` // locale-formatted date label

	TMinP10 float64 `json:"tminP10"`
	TMaxP90 float64 `json:"tmaxP90"`
	TMinMin float64 `json:"tminMin"`
	TMaxMax float64 `json:"tmaxMax"`
	PrcpSum float64 `json:"prcpSum"`

	// Counts is only set for the monthly-history variant.
	Counts *SampleCounts `json:"counts,omitempty"`
}

// SeriesMode selects which temperature projection a chart displays.
type SeriesMode string

const (
	SeriesModeExtreme    SeriesMode = "extreme"
	SeriesModePercentile SeriesMode = "percentile"
)

// TemperatureRange projects the configured pair of low/high fields
// from a point.
func (p TimeSeriesPoint) TemperatureRange(mode SeriesMode) (low, high float64) {
	if mode == SeriesModePercentile {
		return p.TMinP10, p.TMaxP90
	}
	return p.TMinMin, p.TMaxMax
}

// SeriesResponse represents a single-series API response
type SeriesResponse struct {
	StationID string            `json:"stationId"`
	Kind      SeriesKind        `json:"kind"`
	Points    []TimeSeriesPoint `json:"points"`
	Count     int               `json:"count"`

	// NoData is true when the history resource is absent for the station.
	NoData bool `json:"noData,omitempty"`
}
