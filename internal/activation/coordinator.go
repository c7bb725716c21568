package activation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jengzang/climate-map-go/internal/catalog"
	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/series"
)

// Taxonomy of user-visible activation failures.
var (
	// ErrUnknownStation means the requested id is not in the catalog. The
	// triggering operation is a no-op.
	ErrUnknownStation = errors.New("unknown station id")
	// ErrComparisonFull means the comparison selection is at capacity; the
	// selection is left unchanged.
	ErrComparisonFull = errors.New("comparison selection is full")
	// ErrAlreadySelected means the station is already in the comparison
	// selection.
	ErrAlreadySelected = errors.New("station already selected for comparison")
)

// ChartSurface is the capability interface over the chart renderer. Alive
// guards against stale responses: a fetch that completes after the user has
// closed the station's panel must not draw into a disposed surface.
type ChartSurface interface {
	Alive(stationID string) bool

	RenderDaily(stationID string, points []models.TimeSeriesPoint)
	RenderMonthly(stationID string, points []models.TimeSeriesPoint)
	RenderHistory(stationID string, points []models.TimeSeriesPoint)

	// RenderNoHistory shows the "no data" placeholder for the history chart.
	RenderNoHistory(stationID string)
}

// SeriesLoader is the slice of the series loader the coordinator needs.
type SeriesLoader interface {
	LoadAll(ctx context.Context, stationID string) series.StationData
	LoadMonthly(ctx context.Context, stationID string) ([]models.TimeSeriesPoint, error)
}

// Coordinator handles "open this station" requests from marker interaction
// or deep links, and owns the comparison selection together with its
// session-scoped monthly-series cache.
type Coordinator struct {
	catalog *catalog.Catalog
	loader  SeriesLoader
	surface ChartSurface

	mu           sync.Mutex
	mode         models.SeriesMode
	selection    []models.ComparisonEntry
	monthlyCache map[string][]models.TimeSeriesPoint
}

// NewCoordinator creates a coordinator bound to a catalog, a series
// loader, and the chart surface it renders into.
func NewCoordinator(cat *catalog.Catalog, loader SeriesLoader, surface ChartSurface) *Coordinator {
	return &Coordinator{
		catalog:      cat,
		loader:       loader,
		surface:      surface,
		mode:         models.SeriesModeExtreme,
		monthlyCache: make(map[string][]models.TimeSeriesPoint),
	}
}

// Activate loads the three series for a station concurrently and hands each
// outcome to the chart surface. Per-series failures are logged and leave
// only that chart unrendered; they never affect the sibling series or other
// stations.
func (c *Coordinator) Activate(ctx context.Context, stationID string) error {
	if _, ok := c.catalog.FindByID(stationID); !ok {
		log.Printf("activation: ignoring unknown station %q", stationID)
		return fmt.Errorf("%w: %s", ErrUnknownStation, stationID)
	}

	data := c.loader.LoadAll(ctx, stationID)

	// The surface may have been disposed while the fetches were in
	// flight; a stale response must not be drawn.
	if !c.surface.Alive(stationID) {
		log.Printf("activation: discarding stale series for %s", stationID)
		return nil
	}

	if data.DailyErr != nil {
		log.Printf("activation: %v", data.DailyErr)
	} else {
		c.surface.RenderDaily(stationID, data.Daily)
	}

	if data.MonthlyErr != nil {
		log.Printf("activation: %v", data.MonthlyErr)
	} else {
		c.surface.RenderMonthly(stationID, data.Monthly)
	}

	switch {
	case data.NoHistory:
		c.surface.RenderNoHistory(stationID)
	case data.HistoryErr != nil:
		log.Printf("activation: %v", data.HistoryErr)
	default:
		c.surface.RenderHistory(stationID, data.History)
	}

	return nil
}

// SetMode switches between the extreme and percentile temperature
// projections. Both series are present in every point, so this never
// refetches anything.
func (c *Coordinator) SetMode(mode models.SeriesMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

// Mode returns the active series projection.
func (c *Coordinator) Mode() models.SeriesMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// AddStation adds a station to the comparison selection, preserving
// insertion order. Duplicates and additions beyond the capacity are
// rejected without modifying the selection. The station's monthly series is
// cached eagerly so opening the comparison view stays cheap.
func (c *Coordinator) AddStation(ctx context.Context, stationID string) error {
	st, ok := c.catalog.FindByID(stationID)
	if !ok {
		log.Printf("comparison: ignoring unknown station %q", stationID)
		return fmt.Errorf("%w: %s", ErrUnknownStation, stationID)
	}

	c.mu.Lock()
	for _, e := range c.selection {
		if e.StationID == stationID {
			c.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrAlreadySelected, stationID)
		}
	}
	if len(c.selection) >= models.MaxComparisonStations {
		c.mu.Unlock()
		return ErrComparisonFull
	}
	c.selection = append(c.selection, models.ComparisonEntry{StationID: stationID, Name: st.Name})
	_, cached := c.monthlyCache[stationID]
	c.mu.Unlock()

	if !cached {
		if err := c.fillMonthlyCache(ctx, stationID); err != nil {
			// The comparison view retries the fill on open.
			log.Printf("comparison: %v", err)
		}
	}
	return nil
}

// RemoveStation removes a station from the selection. The cached series is
// kept: only an explicit Clear evicts cache entries.
func (c *Coordinator) RemoveStation(stationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.selection[:0]
	for _, e := range c.selection {
		if e.StationID != stationID {
			kept = append(kept, e)
		}
	}
	c.selection = kept
}

// Clear empties the selection and the monthly-series cache.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection = nil
	c.monthlyCache = make(map[string][]models.TimeSeriesPoint)
}

// Selection returns a copy of the current comparison selection in insertion
// order.
func (c *Coordinator) Selection() []models.ComparisonEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]models.ComparisonEntry, len(c.selection))
	copy(result, c.selection)
	return result
}

// ComparisonSeries returns the monthly series for every selected station,
// filling cache misses on demand (the "open comparison view" path).
// Stations whose series cannot be loaded are skipped with a log entry.
func (c *Coordinator) ComparisonSeries(ctx context.Context) []models.ComparisonSeries {
	entries := c.Selection()

	result := make([]models.ComparisonSeries, 0, len(entries))
	for _, e := range entries {
		c.mu.Lock()
		points, ok := c.monthlyCache[e.StationID]
		c.mu.Unlock()

		if !ok {
			if err := c.fillMonthlyCache(ctx, e.StationID); err != nil {
				log.Printf("comparison: %v", err)
				continue
			}
			c.mu.Lock()
			points = c.monthlyCache[e.StationID]
			c.mu.Unlock()
		}
		result = append(result, models.ComparisonSeries{
			StationID: e.StationID,
			Name:      e.Name,
			Points:    points,
		})
	}
	return result
}

func (c *Coordinator) fillMonthlyCache(ctx context.Context, stationID string) error {
	points, err := c.loader.LoadMonthly(ctx, stationID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.monthlyCache[stationID] = points
	c.mu.Unlock()
	return nil
}

// CachedMonthly reports whether a station's monthly series is currently
// cached. Exposed for tests and diagnostics.
func (c *Coordinator) CachedMonthly(stationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.monthlyCache[stationID]
	return ok
}
