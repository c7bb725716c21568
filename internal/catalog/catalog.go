package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/jengzang/climate-map-go/internal/models"
)

// LoadError indicates the station collection could not be fetched or parsed.
// It is fatal to the initial render and is surfaced, not retried.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load station catalog from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Catalog holds the full set of station records. It is read-only after
// Load; queries before Load complete return empty results instead of
// failing.
type Catalog struct {
	source string

	mu       sync.RWMutex
	stations []models.StationRecord
	byID     map[string]models.StationRecord
}

// New creates a catalog backed by a GeoJSON FeatureCollection at the given
// source, either a local file path or an http(s) URL.
func New(source string) *Catalog {
	return &Catalog{
		source: source,
		byID:   make(map[string]models.StationRecord),
	}
}

// featureCollection mirrors the station GeoJSON emitted by the pipeline.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
	Properties struct {
		ID        string  `json:"ID"`
		Name      string  `json:"NAME"`
		State     string  `json:"STATE"`
		Elevation float64 `json:"ELEVATION"`
		WMOID     string  `json:"WMO_ID"`
		Missing   bool    `json:"MISSING"`
	} `json:"properties"`
}

// Load reads and parses the station collection. It replaces any previously
// loaded records wholesale.
func (c *Catalog) Load() error {
	data, err := c.read()
	if err != nil {
		return &LoadError{Source: c.source, Err: err}
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return &LoadError{Source: c.source, Err: fmt.Errorf("invalid GeoJSON: %w", err)}
	}

	stations := make([]models.StationRecord, 0, len(fc.Features))
	byID := make(map[string]models.StationRecord, len(fc.Features))
	for _, f := range fc.Features {
		if f.Properties.ID == "" || len(f.Geometry.Coordinates) < 2 {
			continue
		}
		st := models.StationRecord{
			ID:        f.Properties.ID,
			Name:      f.Properties.Name,
			State:     f.Properties.State,
			Longitude: f.Geometry.Coordinates[0],
			Latitude:  f.Geometry.Coordinates[1],
			Elevation: f.Properties.Elevation,
			WMOID:     f.Properties.WMOID,
			Missing:   f.Properties.Missing,
		}
		stations = append(stations, st)
		byID[st.ID] = st
	}

	c.mu.Lock()
	c.stations = stations
	c.byID = byID
	c.mu.Unlock()

	return nil
}

func (c *Catalog) read() ([]byte, error) {
	if strings.HasPrefix(c.source, "http://") || strings.HasPrefix(c.source, "https://") {
		resp, err := http.Get(c.source)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(c.source)
}

// FindByID returns the station with the given id.
func (c *Catalog) FindByID(id string) (models.StationRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, ok := c.byID[id]
	return st, ok
}

// All returns a copy of every loaded station record.
func (c *Catalog) All() []models.StationRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]models.StationRecord, len(c.stations))
	copy(result, c.stations)
	return result
}

// Len returns the number of loaded stations.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stations)
}
