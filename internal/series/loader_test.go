package series

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jengzang/climate-map-go/internal/models"
)

func TestResourceBucket(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"JA000047662", "JA"},    // trailing zero stripped
		{"CHM00054511", "CHM"},   // no trailing zero
		{"KSM00047102", "KSM"},
		{"UKE00105915", "UKE"},
		{"AB", "AB"},             // shorter than the prefix width
	}
	for _, tt := range tests {
		if got := ResourceBucket(tt.id); got != tt.want {
			t.Errorf("ResourceBucket(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

// testResources maps request paths to CSV bodies.
func newResourceServer(t *testing.T, resources map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := resources[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadDaily(t *testing.T) {
	srv := newResourceServer(t, map[string]string{
		"/JA/JA000047662/JA000047662-daily.csv": "DAY,TMIN_P10,TMAX_P90,TMIN_MIN,TMAX_MAX,PRCP_SUM,MONTH,DAY_OF_MONTH\n" +
			"1,-1.2,11.5,-9.2,22.1,3.4,1,1\n" +
			"2,NaN,11.9,-8.7,21.3,2.2,1,2\n" + // dropped: NaN percentile
			"60,4.1,18.2,-3.0,27.9,5.0,2,29\n", // leap day survives the pinned year
	})

	l := NewLoader(srv.URL)
	points, err := l.LoadDaily(context.Background(), "JA000047662")
	if err != nil {
		t.Fatalf("LoadDaily: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("got %d points, want 2 (NaN row dropped)", len(points))
	}

	want := models.TimeSeriesPoint{
		Date:    time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		Label:   "Jan 1",
		TMinP10: -1.2,
		TMaxP90: 11.5,
		TMinMin: -9.2,
		TMaxMax: 22.1,
		PrcpSum: 3.4,
	}
	if diff := cmp.Diff(want, points[0]); diff != "" {
		t.Errorf("first point mismatch (-want +got):\n%s", diff)
	}

	leap := points[1].Date
	if leap.Month() != time.February || leap.Day() != 29 {
		t.Errorf("leap-day point pinned to %v, want Feb 29", leap)
	}
}

func TestLoadMonthlyOrderPreserved(t *testing.T) {
	// The loader must not sort; source row order is the output order.
	srv := newResourceServer(t, map[string]string{
		"/CHM/CHM00054511/CHM00054511-monthly.csv": "MONTH,TMIN_P10,TMAX_P90,TMIN_MIN,TMAX_MAX,PRCP_SUM\n" +
			"3,0.1,15.0,-8.0,25.0,10.0\n" +
			"1,-9.0,4.0,-18.0,12.0,2.0\n",
	})

	l := NewLoader(srv.URL)
	points, err := l.LoadMonthly(context.Background(), "CHM00054511")
	if err != nil {
		t.Fatalf("LoadMonthly: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Date.Month() != time.March || points[1].Date.Month() != time.January {
		t.Errorf("row order not preserved: %v, %v", points[0].Date, points[1].Date)
	}
	if points[0].Label != "March" {
		t.Errorf("Label = %q, want %q", points[0].Label, "March")
	}
}

func TestLoadMonthlyHistory(t *testing.T) {
	srv := newResourceServer(t, map[string]string{
		"/JA/JA000047662/JA000047662-monthly-history.csv": "DATE,TMIN_P10,TMAX_P90,TMIN_MIN,TMAX_MAX,PRCP_SUM,TMIN_COUNT,TMAX_COUNT,PRCP_COUNT\n" +
			"1971-01-01,-2.0,9.0,-6.1,14.0,48.5,31,31,30\n",
		"/CHM/CHM00054511/CHM00054511-monthly-history.csv": "DATE,TMIN_P10,TMAX_P90,TMIN_MIN,TMAX_MAX,PRCP_SUM,TMIN_COUNT,TMAX_COUNT,PRCP_COUNT\n",
	})

	l := NewLoader(srv.URL)

	points, err := l.LoadMonthlyHistory(context.Background(), "JA000047662")
	if err != nil {
		t.Fatalf("LoadMonthlyHistory: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	// History keeps the real year.
	if points[0].Date.Year() != 1971 {
		t.Errorf("history year = %d, want 1971", points[0].Date.Year())
	}
	wantCounts := &models.SampleCounts{TMin: 31, TMax: 31, Prcp: 30}
	if diff := cmp.Diff(wantCounts, points[0].Counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}

	// Zero data rows is the tolerated no-data outcome, not an error.
	_, err = l.LoadMonthlyHistory(context.Background(), "CHM00054511")
	if !errors.Is(err, ErrNoHistoryData) {
		t.Errorf("empty history: got %v, want ErrNoHistoryData", err)
	}

	// So is an absent resource.
	_, err = l.LoadMonthlyHistory(context.Background(), "UKE00105915")
	if !errors.Is(err, ErrNoHistoryData) {
		t.Errorf("missing history: got %v, want ErrNoHistoryData", err)
	}
}

func TestLoadDailyFetchError(t *testing.T) {
	srv := newResourceServer(t, nil)

	l := NewLoader(srv.URL)
	_, err := l.LoadDaily(context.Background(), "JA000047662")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("got %v, want *FetchError", err)
	}
	if fe.Kind != models.SeriesDaily || fe.StationID != "JA000047662" {
		t.Errorf("FetchError fields = %+v", fe)
	}
}

func TestLoadAllIndependentFailures(t *testing.T) {
	// Monthly resource is broken; daily and history must still load.
	srv := newResourceServer(t, map[string]string{
		"/JA/JA000047662/JA000047662-daily.csv": "DAY,TMIN_P10,TMAX_P90,TMIN_MIN,TMAX_MAX,PRCP_SUM,MONTH,DAY_OF_MONTH\n" +
			"1,-1.2,11.5,-9.2,22.1,3.4,1,1\n",
	})

	l := NewLoader(srv.URL)
	data := l.LoadAll(context.Background(), "JA000047662")

	if data.DailyErr != nil {
		t.Errorf("DailyErr = %v, want nil", data.DailyErr)
	}
	if len(data.Daily) != 1 {
		t.Errorf("got %d daily points, want 1", len(data.Daily))
	}
	if data.MonthlyErr == nil {
		t.Error("MonthlyErr should be set")
	}
	if !data.NoHistory || data.HistoryErr != nil {
		t.Errorf("history outcome = noHistory=%v err=%v, want tolerated no-data", data.NoHistory, data.HistoryErr)
	}
}

func TestLoaderFromDirectory(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(dir)
	_, err := l.LoadMonthlyHistory(context.Background(), "JA000047662")
	if !errors.Is(err, ErrNoHistoryData) {
		t.Errorf("missing file on disk: got %v, want ErrNoHistoryData", err)
	}
}
