package models

import "time"

// GHCN-D observation elements the pipeline processes.
const (
	ElementTMin = "TMIN"
	ElementTMax = "TMAX"
	ElementPrcp = "PRCP"
)

// Elements lists the processed elements in canonical order.
var Elements = []string{ElementTMin, ElementTMax, ElementPrcp}

// Observation is one daily measurement for a station/element pair.
// Temperatures are stored in °C, precipitation in mm. Valid is false for
// dates the station reported no value; such rows still count toward the
// completeness denominator.
type Observation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Valid bool      `json:"valid"`
}
