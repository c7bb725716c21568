package pipeline

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/repository"
)

// Options configures a pipeline run.
type Options struct {
	// StationsPath is the GHCN-D fixed-width inventory file.
	StationsPath string
	// ElementDir holds one merged csv per element (tmin.csv, tmax.csv,
	// prcp.csv) covering all stations.
	ElementDir string
	// OutDir is the export root the server later serves resources from.
	OutDir string
	// Prefixes limits the run to matching station networks; empty means
	// every station in the inventory.
	Prefixes []string
	// Workbooks additionally writes one xlsx per station.
	Workbooks bool
}

// Pipeline turns the raw GHCN-D inputs into the per-station chart
// resources and the station catalog the map serves.
type Pipeline struct {
	stations     *repository.StationRepository
	observations *repository.ObservationRepository
	opts         Options
}

// NewPipeline creates a pipeline backed by the given repositories.
func NewPipeline(stations *repository.StationRepository, observations *repository.ObservationRepository, opts Options) *Pipeline {
	if len(opts.Prefixes) == 0 {
		opts.Prefixes = DefaultNetworkPrefixes
	}
	return &Pipeline{stations: stations, observations: observations, opts: opts}
}

// Run executes the full pipeline: inventory, ingestion, aggregation,
// and export.
func (p *Pipeline) Run() error {
	stations, err := ParseStationsFile(p.opts.StationsPath, p.opts.Prefixes)
	if err != nil {
		return fmt.Errorf("inventory stage failed: %w", err)
	}
	log.Printf("pipeline: %d stations selected from inventory", len(stations))

	if err := p.stations.UpsertStations(stations); err != nil {
		return fmt.Errorf("inventory stage failed: %w", err)
	}

	if err := p.ingest(stations); err != nil {
		return err
	}

	for i := range stations {
		if err := p.exportStation(&stations[i]); err != nil {
			return err
		}
		if err := p.stations.SetMissing(stations[i].ID, stations[i].Missing); err != nil {
			return err
		}
	}

	geojsonPath := filepath.Join(p.opts.OutDir, "stations.geojson")
	if err := WriteStationsGeoJSON(geojsonPath, stations); err != nil {
		return fmt.Errorf("export stage failed: %w", err)
	}
	log.Printf("pipeline: wrote %d stations to %s", len(stations), geojsonPath)
	return nil
}

func (p *Pipeline) ingest(stations []models.StationRecord) error {
	for _, element := range models.Elements {
		path := filepath.Join(p.opts.ElementDir, fmt.Sprintf("%s.csv", element))
		for _, st := range stations {
			obs, err := ParseElementFile(path, st.ID, element)
			if err != nil {
				return fmt.Errorf("ingest stage failed for %s/%s: %w", st.ID, element, err)
			}
			if len(obs) == 0 {
				continue
			}
			if err := p.observations.InsertBatch(st.ID, element, obs); err != nil {
				return fmt.Errorf("ingest stage failed for %s/%s: %w", st.ID, element, err)
			}
		}
		log.Printf("pipeline: ingested element %s", element)
	}
	return nil
}

// exportStation aggregates and writes one station's resources. Elements
// that fail the completeness gate are dropped from the aggregates; a
// station with no usable element is marked missing and skipped.
func (p *Pipeline) exportStation(st *models.StationRecord) error {
	byElement := make(map[string][]models.Observation, len(models.Elements))
	anyUsable := false
	for _, element := range models.Elements {
		valid, total, err := p.observations.Completeness(st.ID, element, StartYear)
		if err != nil {
			return fmt.Errorf("quality stage failed for %s/%s: %w", st.ID, element, err)
		}
		if !Usable(valid, total) {
			log.Printf("pipeline: station %s element %s below completeness gate (%.2f)",
				st.ID, element, Completeness(valid, total))
			continue
		}
		obs, err := p.observations.GetSeries(st.ID, element)
		if err != nil {
			return fmt.Errorf("export stage failed for %s/%s: %w", st.ID, element, err)
		}
		byElement[element] = obs
		anyUsable = true
	}

	if !anyUsable {
		st.Missing = true
		log.Printf("pipeline: station %s has no usable element, marked missing", st.ID)
		return nil
	}

	tmin := byElement[models.ElementTMin]
	tmax := byElement[models.ElementTMax]
	prcp := byElement[models.ElementPrcp]

	daily := AggregateDaily(tmin, tmax, prcp)
	monthly := AggregateMonthly(tmin, tmax, prcp)
	history := AggregateHistory(tmin, tmax, prcp)

	if err := WriteDaily(p.opts.OutDir, st.ID, daily); err != nil {
		return fmt.Errorf("export stage failed for %s: %w", st.ID, err)
	}
	if err := WriteMonthly(p.opts.OutDir, st.ID, monthly); err != nil {
		return fmt.Errorf("export stage failed for %s: %w", st.ID, err)
	}
	if len(history) > 0 {
		if err := WriteHistory(p.opts.OutDir, st.ID, history); err != nil {
			return fmt.Errorf("export stage failed for %s: %w", st.ID, err)
		}
	}
	if p.opts.Workbooks {
		if err := WriteWorkbook(p.opts.OutDir, st.ID, daily, monthly, history); err != nil {
			return fmt.Errorf("export stage failed for %s: %w", st.ID, err)
		}
	}
	return nil
}
