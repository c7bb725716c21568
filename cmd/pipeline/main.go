package main

import (
	"flag"
	"log"
	"strings"

	"github.com/jengzang/climate-map-go/internal/database"
	"github.com/jengzang/climate-map-go/internal/pipeline"
	"github.com/jengzang/climate-map-go/internal/repository"
)

func main() {
	var (
		stationsPath = flag.String("stations", "./data/raw/ghcnd-stations.txt", "GHCN-D station inventory file")
		elementDir   = flag.String("elements", "./data/raw", "directory with per-element csv files")
		outDir       = flag.String("out", "./data/out", "export root for chart resources")
		dbPath       = flag.String("db", "./data/climate.db", "intermediate observation store")
		prefixes     = flag.String("prefixes", "", "comma-separated network prefixes (default: built-in set)")
		workbooks    = flag.Bool("xlsx", false, "also write one xlsx workbook per station")
	)
	flag.Parse()

	db, err := database.Open(database.Config{Path: *dbPath})
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	opts := pipeline.Options{
		StationsPath: *stationsPath,
		ElementDir:   *elementDir,
		OutDir:       *outDir,
		Workbooks:    *workbooks,
	}
	if *prefixes != "" {
		opts.Prefixes = strings.Split(*prefixes, ",")
	}

	p := pipeline.NewPipeline(
		repository.NewStationRepository(db),
		repository.NewObservationRepository(db),
		opts,
	)
	if err := p.Run(); err != nil {
		log.Fatal("Pipeline failed:", err)
	}
}
