package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server configuration.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// CatalogSource is the stations GeoJSON, a local path or an http(s) URL.
	CatalogSource string
	// ResourceBase is where the per-station chart resources live, a local
	// directory or an http(s) base URL.
	ResourceBase string
	// ZoomThreshold is the zoom level at which the map switches from the
	// heat layer to individual markers.
	ZoomThreshold int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is merged in first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: skipping .env: %v", err)
	}

	return &Config{
		Port:          envOr("PORT", ":8080"),
		DBPath:        envOr("DB_PATH", "./data/climate.db"),
		JWTSecret:     envOr("JWT_SECRET", "your-secret-key-change-in-production"),
		CatalogSource: envOr("CATALOG_SOURCE", "./data/out/stations.geojson"),
		ResourceBase:  envOr("RESOURCE_BASE", "./data/out"),
		ZoomThreshold: envIntOr("ZOOM_THRESHOLD", 10),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
