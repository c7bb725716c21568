package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/series"
)

func stationLine(id string, lat, lon, elev float64, state, name, wmo string) string {
	return fmt.Sprintf("%-11s %8.4f %9.4f %6.1f %2s %-30s         %5s",
		id, lat, lon, elev, state, name, wmo)
}

func TestParseStationsFiltersByPrefix(t *testing.T) {
	input := strings.Join([]string{
		stationLine("JA000047662", 35.6830, 139.7670, 36.0, "", "TOKYO", "47662"),
		stationLine("CHM00054511", 39.9330, 116.2830, 55.0, "", "BEIJING", "54511"),
		stationLine("USW00094728", 40.7789, -73.9692, 39.6, "NY", "NEW YORK CNTRL PK TWR", "72506"),
		"",
	}, "\n")

	stations, err := parseStations(strings.NewReader(input), []string{"JA", "CHM"})
	if err != nil {
		t.Fatalf("parseStations: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("got %d stations, want 2", len(stations))
	}

	want := models.StationRecord{
		ID:        "JA000047662",
		Name:      "TOKYO",
		Latitude:  35.683,
		Longitude: 139.767,
		Elevation: 36.0,
		WMOID:     "47662",
	}
	if diff := cmp.Diff(want, stations[0]); diff != "" {
		t.Errorf("first station mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStationsKeepsAllWithoutPrefixes(t *testing.T) {
	input := stationLine("USW00094728", 40.7789, -73.9692, 39.6, "NY", "NEW YORK", "72506")
	stations, err := parseStations(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("parseStations: %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("got %d stations, want 1", len(stations))
	}
	if stations[0].State != "NY" {
		t.Errorf("state = %q, want NY", stations[0].State)
	}
}

func TestParseStationsBadCoordinates(t *testing.T) {
	input := "JA000047662 badlat    139.7670   36.0    TOKYO"
	if _, err := parseStations(strings.NewReader(input), nil); err == nil {
		t.Fatal("expected error for unparseable latitude")
	}
}

func TestParseElement(t *testing.T) {
	input := strings.Join([]string{
		"ID,DATE,DATA_VALUE,M_FLAG",
		"JA000047662,19900101,-52,",
		"CHM00054511,19900101,-120,",
		"JA000047662,19900102,-9999,",
		"JA000047662,19900103,31,",
	}, "\n")

	obs, err := parseElement(strings.NewReader(input), "JA000047662", models.ElementTMin)
	if err != nil {
		t.Fatalf("parseElement: %v", err)
	}
	if len(obs) != 3 {
		t.Fatalf("got %d observations, want 3", len(obs))
	}
	if !obs[0].Valid || obs[0].Value != -5.2 {
		t.Errorf("first observation = %+v, want valid -5.2", obs[0])
	}
	if obs[1].Valid {
		t.Errorf("sentinel observation should be invalid, got %+v", obs[1])
	}
	if obs[2].Date != time.Date(1990, 1, 3, 0, 0, 0, 0, time.UTC) {
		t.Errorf("third date = %v", obs[2].Date)
	}
}

func TestParseElementKeepsPrecipitationUnit(t *testing.T) {
	input := "ID,DATE,DATA_VALUE\nJA000047662,19900101,254"
	obs, err := parseElement(strings.NewReader(input), "JA000047662", models.ElementPrcp)
	if err != nil {
		t.Fatalf("parseElement: %v", err)
	}
	if obs[0].Value != 254 {
		t.Errorf("precipitation value = %v, want 254 (no conversion)", obs[0].Value)
	}
}

func TestParseElementMissingColumn(t *testing.T) {
	input := "ID,DATE\nJA000047662,19900101"
	if _, err := parseElement(strings.NewReader(input), "JA000047662", models.ElementTMin); err == nil {
		t.Fatal("expected error for missing DATA_VALUE column")
	}
}

func day(year, month, dayOfMonth int, value float64) models.Observation {
	return models.Observation{
		Date:  time.Date(year, time.Month(month), dayOfMonth, 0, 0, 0, 0, time.UTC),
		Value: value,
		Valid: true,
	}
}

func TestAggregateDailyTwoStage(t *testing.T) {
	// One observation per year for the same calendar day: stage one
	// collapses to the value itself, stage two averages percentiles and
	// sums across years and keeps the overall extremes.
	tmin := []models.Observation{
		day(1990, 1, 1, 10),
		day(1991, 1, 1, 20),
		day(1960, 1, 1, -100), // before the cutoff, must not contribute
	}
	rows := AggregateDaily(tmin, nil, nil)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	row := rows[0]
	if row.Day != 1 || row.Month != 1 || row.DayOfMonth != 1 {
		t.Errorf("calendar slot = %d/%d day %d", row.Month, row.DayOfMonth, row.Day)
	}
	if row.TMin == nil {
		t.Fatal("tmin stats missing")
	}
	if row.TMin.P10 != 15 || row.TMin.Min != 10 || row.TMin.Max != 20 || row.TMin.Sum != 15 {
		t.Errorf("tmin stats = %+v", *row.TMin)
	}
	if row.TMax != nil || row.Prcp != nil {
		t.Error("absent elements should have nil stats")
	}
}

func TestAggregateDailyCalendarOrder(t *testing.T) {
	tmax := []models.Observation{
		day(1990, 12, 31, 5),
		day(1990, 1, 2, 3),
		day(1992, 2, 29, 1),
	}
	rows := AggregateDaily(nil, tmax, nil)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, want := range []struct{ month, dom int }{{1, 2}, {2, 29}, {12, 31}} {
		if rows[i].Month != want.month || rows[i].DayOfMonth != want.dom {
			t.Errorf("row %d = %d/%d, want %d/%d",
				i, rows[i].Month, rows[i].DayOfMonth, want.month, want.dom)
		}
		if rows[i].Day != i+1 {
			t.Errorf("row %d index = %d, want %d", i, rows[i].Day, i+1)
		}
	}
}

func TestAggregateMonthlyPercentiles(t *testing.T) {
	var tmin []models.Observation
	for d := 1; d <= 10; d++ {
		tmin = append(tmin, day(1990, 1, d, float64(d)))
	}
	rows := AggregateMonthly(tmin, nil, nil)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	s := rows[0].TMin
	if s == nil {
		t.Fatal("tmin stats missing")
	}
	if math.Abs(s.P10-1.9) > 1e-9 || math.Abs(s.P90-9.1) > 1e-9 {
		t.Errorf("percentiles = %v/%v, want 1.9/9.1", s.P10, s.P90)
	}
	if s.Min != 1 || s.Max != 10 || s.Sum != 55 {
		t.Errorf("stats = %+v", *s)
	}
}

func TestAggregateHistory(t *testing.T) {
	tmin := []models.Observation{
		day(1971, 1, 1, -3),
		day(1971, 1, 2, -1),
		day(1971, 2, 1, 0),
	}
	prcp := []models.Observation{
		day(1971, 1, 1, 12),
		day(1971, 1, 15, 8),
	}
	rows := AggregateHistory(tmin, nil, prcp)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	jan := rows[0]
	if !jan.Date.Equal(time.Date(1971, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first month = %v", jan.Date)
	}
	if jan.TMinCount != 2 || jan.PrcpCount != 2 || jan.TMaxCount != 0 {
		t.Errorf("counts = %d/%d/%d", jan.TMinCount, jan.TMaxCount, jan.PrcpCount)
	}
	if jan.TMinMin != -3 || jan.PrcpSum != 20 {
		t.Errorf("stats = min %v, sum %v", jan.TMinMin, jan.PrcpSum)
	}
	if !math.IsNaN(jan.TMaxP90) || !math.IsNaN(jan.TMaxMax) {
		t.Error("absent element should be NaN")
	}

	feb := rows[1]
	if feb.TMinCount != 1 || feb.PrcpCount != 0 {
		t.Errorf("february counts = %d/%d", feb.TMinCount, feb.PrcpCount)
	}
}

func TestCompletenessGate(t *testing.T) {
	tests := []struct {
		valid, total int
		usable       bool
	}{
		{700, 1000, true},
		{699, 1000, false},
		{0, 0, false},
		{1, 1, true},
	}
	for _, tt := range tests {
		if got := Usable(tt.valid, tt.total); got != tt.usable {
			t.Errorf("Usable(%d, %d) = %v, want %v", tt.valid, tt.total, got, tt.usable)
		}
	}
}

func TestExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	const stationID = "JA000047662"

	daily := []DailyRow{
		{Day: 1, Month: 2, DayOfMonth: 29,
			TMin: &ElementStats{P10: -2.5, Min: -8},
			TMax: &ElementStats{P90: 11.5, Max: 17},
			Prcp: &ElementStats{Sum: 4.2}},
		{Day: 2, Month: 3, DayOfMonth: 1}, // no stats at all, dropped on load
	}
	monthly := []MonthlyRow{
		{Month: 2,
			TMin: &ElementStats{P10: -1.234, Min: -9},
			TMax: &ElementStats{P90: 10.567, Max: 18},
			Prcp: &ElementStats{Sum: 88.8}},
	}
	history := []HistoryRow{
		{Date: time.Date(1971, 2, 1, 0, 0, 0, 0, time.UTC),
			TMinP10: -3, TMaxP90: 9, TMinMin: -10, TMaxMax: 15, PrcpSum: 60,
			TMinCount: 28, TMaxCount: 27, PrcpCount: 28},
	}

	if err := WriteDaily(dir, stationID, daily); err != nil {
		t.Fatalf("WriteDaily: %v", err)
	}
	if err := WriteMonthly(dir, stationID, monthly); err != nil {
		t.Fatalf("WriteMonthly: %v", err)
	}
	if err := WriteHistory(dir, stationID, history); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}

	loader := series.NewLoader(dir)
	ctx := context.Background()

	dailyPoints, err := loader.LoadDaily(ctx, stationID)
	if err != nil {
		t.Fatalf("LoadDaily: %v", err)
	}
	if len(dailyPoints) != 1 {
		t.Fatalf("got %d daily points, want 1 (statless row dropped)", len(dailyPoints))
	}
	if dailyPoints[0].Date.Month() != time.February || dailyPoints[0].Date.Day() != 29 {
		t.Errorf("daily date = %v, want Feb 29", dailyPoints[0].Date)
	}
	if dailyPoints[0].TMinP10 != -2.5 || dailyPoints[0].TMaxMax != 17 {
		t.Errorf("daily point = %+v", dailyPoints[0])
	}

	monthlyPoints, err := loader.LoadMonthly(ctx, stationID)
	if err != nil {
		t.Fatalf("LoadMonthly: %v", err)
	}
	if len(monthlyPoints) != 1 {
		t.Fatalf("got %d monthly points, want 1", len(monthlyPoints))
	}
	if monthlyPoints[0].TMinP10 != -1.23 || monthlyPoints[0].TMaxP90 != 10.57 {
		t.Errorf("monthly rounding off: %+v", monthlyPoints[0])
	}

	historyPoints, err := loader.LoadMonthlyHistory(ctx, stationID)
	if err != nil {
		t.Fatalf("LoadMonthlyHistory: %v", err)
	}
	if len(historyPoints) != 1 {
		t.Fatalf("got %d history points, want 1", len(historyPoints))
	}
	hp := historyPoints[0]
	if hp.Date.Year() != 1971 || hp.Counts == nil || hp.Counts.TMax != 27 {
		t.Errorf("history point = %+v", hp)
	}
}
