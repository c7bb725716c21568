package series

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jengzang/climate-map-go/internal/models"
)

// ErrNoHistoryData is the expected outcome when a station has no
// monthly-history resource at all. Callers render a placeholder instead of
// a chart; it is not treated as a fetch failure.
var ErrNoHistoryData = errors.New("no monthly history data")

// FetchError indicates one series resource could not be fetched or parsed.
// It never affects sibling series or other stations.
type FetchError struct {
	StationID string
	Kind      models.SeriesKind
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s series for %s: %v", e.Kind, e.StationID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Daily and monthly points are pinned to a synthetic year so only the
// month/day cycle matters for display. 2000 is a leap year, so Feb 29
// survives the pinning.
const pinnedYear = 2000

// Loader fetches per-station delimited climate resources and produces
// ordered chart series. The base may be a directory or an http(s) URL
// prefix; resources live at <base>/<bucket>/<id>/<id>-<kind>.csv where the
// bucket is the first three characters of the id with a trailing "0"
// stripped.
type Loader struct {
	base   string
	client *http.Client
}

// NewLoader creates a loader for the given resource base.
// No request timeout is set: a hung request leaves that one chart loading
// without blocking other stations.
func NewLoader(base string) *Loader {
	return &Loader{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{},
	}
}

// ResourceBucket returns the path segment a station's resources are
// grouped under.
func ResourceBucket(stationID string) string {
	prefix := stationID
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	prefix = strings.TrimSuffix(prefix, "0")
	return prefix
}

func (l *Loader) resourcePath(stationID string, kind models.SeriesKind) string {
	name := fmt.Sprintf("%s-%s.csv", stationID, kind)
	return path.Join(ResourceBucket(stationID), stationID, name)
}

// LoadDaily fetches the multi-year daily aggregate series for a station.
func (l *Loader) LoadDaily(ctx context.Context, stationID string) ([]models.TimeSeriesPoint, error) {
	rows, err := l.fetch(ctx, stationID, models.SeriesDaily)
	if err != nil {
		return nil, err
	}
	return parseDaily(rows), nil
}

// LoadMonthly fetches the multi-year monthly aggregate series for a station.
func (l *Loader) LoadMonthly(ctx context.Context, stationID string) ([]models.TimeSeriesPoint, error) {
	rows, err := l.fetch(ctx, stationID, models.SeriesMonthly)
	if err != nil {
		return nil, err
	}
	return parseMonthly(rows), nil
}

// LoadMonthlyHistory fetches the real-year per-month series for a station.
// A missing or empty resource yields ErrNoHistoryData.
func (l *Loader) LoadMonthlyHistory(ctx context.Context, stationID string) ([]models.TimeSeriesPoint, error) {
	rows, err := l.fetch(ctx, stationID, models.SeriesMonthlyHistory)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) && errors.Is(fe.Err, ErrNotFound) {
			return nil, ErrNoHistoryData
		}
		return nil, err
	}
	points := parseHistory(rows)
	if len(points) == 0 {
		return nil, ErrNoHistoryData
	}
	return points, nil
}

// StationData bundles the outcome of the three independent series loads
// for one station. Each series carries its own error; failure of one never
// cancels the others.
type StationData struct {
	StationID string
	Daily     []models.TimeSeriesPoint
	Monthly   []models.TimeSeriesPoint
	History   []models.TimeSeriesPoint
	NoHistory bool

	DailyErr   error
	MonthlyErr error
	HistoryErr error
}

// LoadAll issues the three series fetches concurrently and joins them.
func (l *Loader) LoadAll(ctx context.Context, stationID string) StationData {
	data := StationData{StationID: stationID}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		data.Daily, data.DailyErr = l.LoadDaily(ctx, stationID)
	}()
	go func() {
		defer wg.Done()
		data.Monthly, data.MonthlyErr = l.LoadMonthly(ctx, stationID)
	}()
	go func() {
		defer wg.Done()
		data.History, data.HistoryErr = l.LoadMonthlyHistory(ctx, stationID)
		if errors.Is(data.HistoryErr, ErrNoHistoryData) {
			data.NoHistory = true
			data.HistoryErr = nil
		}
	}()
	wg.Wait()

	return data
}

// ErrNotFound means the resource does not exist at the base.
var ErrNotFound = errors.New("resource not found")

// row is one parsed CSV record keyed by header name.
type row map[string]string

func (l *Loader) fetch(ctx context.Context, stationID string, kind models.SeriesKind) ([]row, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	rel := l.resourcePath(stationID, kind)
	if strings.HasPrefix(l.base, "http://") || strings.HasPrefix(l.base, "https://") {
		rc, err = l.fetchHTTP(ctx, l.base+"/"+rel)
	} else {
		rc, err = l.fetchFile(rel)
	}
	if err != nil {
		return nil, &FetchError{StationID: stationID, Kind: kind, Err: err}
	}
	defer rc.Close()

	rows, err := readRows(rc)
	if err != nil {
		return nil, &FetchError{StationID: stationID, Kind: kind, Err: err}
	}
	return rows, nil
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func (l *Loader) fetchFile(rel string) (io.ReadCloser, error) {
	f, err := os.Open(path.Join(l.base, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// readRows parses a delimited resource into header-keyed records. An empty
// body (no header or no data rows) yields no rows, not an error.
func readRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid CSV header: %w", err)
	}

	var rows []row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV record: %w", err)
		}
		m := make(row, len(header))
		for i, name := range header {
			if i < len(rec) {
				m[name] = rec[i]
			}
		}
		rows = append(rows, m)
	}
	return rows, nil
}

// statFields are required on every row; a row missing any of them, or with
// an unparseable or NaN value, is dropped rather than failing the load.
var statFields = []string{"TMIN_P10", "TMAX_P90", "TMIN_MIN", "TMAX_MAX", "PRCP_SUM"}

func parseStats(r row) (models.TimeSeriesPoint, bool) {
	var p models.TimeSeriesPoint
	dst := map[string]*float64{
		"TMIN_P10": &p.TMinP10,
		"TMAX_P90": &p.TMaxP90,
		"TMIN_MIN": &p.TMinMin,
		"TMAX_MAX": &p.TMaxMax,
		"PRCP_SUM": &p.PrcpSum,
	}
	for _, field := range statFields {
		v, err := strconv.ParseFloat(r[field], 64)
		if err != nil || math.IsNaN(v) {
			return models.TimeSeriesPoint{}, false
		}
		*dst[field] = v
	}
	return p, true
}

func parseDaily(rows []row) []models.TimeSeriesPoint {
	points := make([]models.TimeSeriesPoint, 0, len(rows))
	for _, r := range rows {
		p, ok := parseStats(r)
		if !ok {
			continue
		}
		month, err1 := strconv.Atoi(r["MONTH"])
		day, err2 := strconv.Atoi(r["DAY_OF_MONTH"])
		if err1 != nil || err2 != nil {
			continue
		}
		p.Date = time.Date(pinnedYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		p.Label = p.Date.Format("Jan 2")
		points = append(points, p)
	}
	return points
}

func parseMonthly(rows []row) []models.TimeSeriesPoint {
	points := make([]models.TimeSeriesPoint, 0, len(rows))
	for _, r := range rows {
		p, ok := parseStats(r)
		if !ok {
			continue
		}
		month, err := strconv.Atoi(r["MONTH"])
		if err != nil {
			continue
		}
		p.Date = time.Date(pinnedYear, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		p.Label = p.Date.Format("January")
		points = append(points, p)
	}
	return points
}

func parseHistory(rows []row) []models.TimeSeriesPoint {
	points := make([]models.TimeSeriesPoint, 0, len(rows))
	for _, r := range rows {
		p, ok := parseStats(r)
		if !ok {
			continue
		}
		date, err := time.Parse("2006-01-02", r["DATE"])
		if err != nil {
			continue
		}
		p.Date = date
		p.Label = date.Format("Jan 2006")

		// Sample counts are informative only; absent or malformed counts
		// do not drop the row.
		counts := &models.SampleCounts{}
		counts.TMin, _ = strconv.Atoi(r["TMIN_COUNT"])
		counts.TMax, _ = strconv.Atoi(r["TMAX_COUNT"])
		counts.Prcp, _ = strconv.Atoi(r["PRCP_COUNT"])
		p.Counts = counts

		points = append(points, p)
	}
	return points
}
