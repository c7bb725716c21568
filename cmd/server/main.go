package main

import (
	"log"
	"time"

	"github.com/jengzang/climate-map-go/internal/api"
	"github.com/jengzang/climate-map-go/internal/catalog"
	"github.com/jengzang/climate-map-go/internal/config"
	"github.com/jengzang/climate-map-go/internal/database"
	"github.com/jengzang/climate-map-go/internal/handler"
	"github.com/jengzang/climate-map-go/internal/repository"
	"github.com/jengzang/climate-map-go/internal/series"
	"github.com/jengzang/climate-map-go/internal/session"
)

const sessionTTL = 30 * time.Minute

func main() {
	cfg := config.Load()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	cat := catalog.New(cfg.CatalogSource)
	if err := cat.Load(); err != nil {
		log.Fatal("Failed to load station catalog:", err)
	}
	log.Printf("Loaded %d stations from %s", cat.Len(), cfg.CatalogSource)

	loader := series.NewLoader(cfg.ResourceBase)
	registry := session.NewRegistry(cat, loader, cfg.ZoomThreshold, sessionTTL)
	stationRepo := repository.NewStationRepository(db)

	router := api.SetupRouter(cfg, api.Handlers{
		Stations:   handler.NewStationHandler(cat),
		Series:     handler.NewSeriesHandler(cat, loader),
		Sessions:   handler.NewSessionHandler(registry),
		Comparison: handler.NewComparisonHandler(registry),
		Admin:      handler.NewAdminHandler(cat, stationRepo, registry),
	})

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
