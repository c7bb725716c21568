package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/series"
)

var dailyHeader = []string{
	"DAY", "TMIN_P10", "TMAX_P90", "TMIN_MIN", "TMAX_MAX", "PRCP_SUM",
	"MONTH", "DAY_OF_MONTH",
}

var monthlyHeader = []string{
	"MONTH", "TMIN_P10", "TMAX_P90", "TMIN_MIN", "TMAX_MAX", "PRCP_SUM",
}

var historyHeader = []string{
	"DATE", "TMIN_P10", "TMAX_P90", "TMIN_MIN", "TMAX_MAX", "PRCP_SUM",
	"TMIN_COUNT", "TMAX_COUNT", "PRCP_COUNT",
}

// StationDir returns the per-station output directory under the export
// root, using the same bucket scheme the serving side resolves.
func StationDir(root, stationID string) string {
	return filepath.Join(root, series.ResourceBucket(stationID), stationID)
}

func resourcePath(root, stationID string, kind models.SeriesKind) string {
	return filepath.Join(StationDir(root, stationID), fmt.Sprintf("%s-%s.csv", stationID, kind))
}

// WriteDaily writes the multi-year daily series for one station.
func WriteDaily(root, stationID string, rows []DailyRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			strconv.Itoa(row.Day),
			formatStat(statP10(row.TMin)),
			formatStat(statP90(row.TMax)),
			formatStat(statMin(row.TMin)),
			formatStat(statMax(row.TMax)),
			formatStat(statSum(row.Prcp)),
			strconv.Itoa(row.Month),
			strconv.Itoa(row.DayOfMonth),
		})
	}
	return writeCSV(resourcePath(root, stationID, models.SeriesDaily), dailyHeader, records)
}

// WriteMonthly writes the multi-year monthly series for one station.
// Values are rounded to two decimals.
func WriteMonthly(root, stationID string, rows []MonthlyRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			strconv.Itoa(row.Month),
			formatRounded(statP10(row.TMin)),
			formatRounded(statP90(row.TMax)),
			formatRounded(statMin(row.TMin)),
			formatRounded(statMax(row.TMax)),
			formatRounded(statSum(row.Prcp)),
		})
	}
	return writeCSV(resourcePath(root, stationID, models.SeriesMonthly), monthlyHeader, records)
}

// WriteHistory writes the real-year monthly history for one station.
func WriteHistory(root, stationID string, rows []HistoryRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Date.Format("2006-01-02"),
			formatStat(row.TMinP10),
			formatStat(row.TMaxP90),
			formatStat(row.TMinMin),
			formatStat(row.TMaxMax),
			formatStat(row.PrcpSum),
			strconv.Itoa(row.TMinCount),
			strconv.Itoa(row.TMaxCount),
			strconv.Itoa(row.PrcpCount),
		})
	}
	return writeCSV(resourcePath(root, stationID, models.SeriesMonthlyHistory), historyHeader, records)
}

func writeCSV(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatRounded(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}

func statP10(s *ElementStats) float64 {
	if s == nil {
		return math.NaN()
	}
	return s.P10
}

func statP90(s *ElementStats) float64 {
	if s == nil {
		return math.NaN()
	}
	return s.P90
}

func statMin(s *ElementStats) float64 {
	if s == nil {
		return math.NaN()
	}
	return s.Min
}

func statMax(s *ElementStats) float64 {
	if s == nil {
		return math.NaN()
	}
	return s.Max
}

func statSum(s *ElementStats) float64 {
	if s == nil {
		return math.NaN()
	}
	return s.Sum
}

type geoFeature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   geoGeometry    `json:"geometry"`
}

type geoGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type geoCollection struct {
	Type     string       `json:"type"`
	Features []geoFeature `json:"features"`
}

// WriteStationsGeoJSON writes the station inventory as the GeoJSON
// FeatureCollection the map serves to clients.
func WriteStationsGeoJSON(path string, stations []models.StationRecord) error {
	fc := geoCollection{Type: "FeatureCollection"}
	for _, st := range stations {
		fc.Features = append(fc.Features, geoFeature{
			Type: "Feature",
			Properties: map[string]any{
				"ID":        st.ID,
				"NAME":      st.Name,
				"STATE":     st.State,
				"ELEVATION": st.Elevation,
				"WMO_ID":    st.WMOID,
				"MISSING":   st.Missing,
			},
			Geometry: geoGeometry{
				Type:        "Point",
				Coordinates: []float64{st.Longitude, st.Latitude},
			},
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stations geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write stations geojson: %w", err)
	}
	return nil
}
