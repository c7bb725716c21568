package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jengzang/climate-map-go/internal/models"
)

// DefaultNetworkPrefixes selects the station networks the map covers.
var DefaultNetworkPrefixes = []string{
	"CHM", "JA", "KSM", "FRE", "GMM", "UKE", "IDM", "MXM", "NLE",
}

// ParseStationsFile reads the GHCN-D fixed-width station inventory
// (ghcnd-stations.txt) and returns records for ids matching any of the
// given prefixes. An empty prefix list keeps every station.
//
// Column layout (0-based, end exclusive): ID 0:11, LATITUDE 12:20,
// LONGITUDE 21:30, ELEVATION 31:37, STATE 38:40, NAME 41:71, WMO_ID 80:85.
func ParseStationsFile(path string, prefixes []string) ([]models.StationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stations file: %w", err)
	}
	defer f.Close()
	return parseStations(f, prefixes)
}

func parseStations(r io.Reader, prefixes []string) ([]models.StationRecord, error) {
	var stations []models.StationRecord

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		st, err := parseStationLine(line)
		if err != nil {
			return nil, err
		}
		if matchesPrefix(st.ID, prefixes) {
			stations = append(stations, st)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stations file: %w", err)
	}
	return stations, nil
}

func parseStationLine(line string) (models.StationRecord, error) {
	field := func(start, end int) string {
		if start >= len(line) {
			return ""
		}
		if end > len(line) {
			end = len(line)
		}
		return strings.TrimSpace(line[start:end])
	}

	id := field(0, 11)
	if id == "" {
		return models.StationRecord{}, fmt.Errorf("station line without id: %q", line)
	}

	lat, err := strconv.ParseFloat(field(12, 20), 64)
	if err != nil {
		return models.StationRecord{}, fmt.Errorf("station %s: bad latitude: %w", id, err)
	}
	lon, err := strconv.ParseFloat(field(21, 30), 64)
	if err != nil {
		return models.StationRecord{}, fmt.Errorf("station %s: bad longitude: %w", id, err)
	}
	elev, err := strconv.ParseFloat(field(31, 37), 64)
	if err != nil {
		return models.StationRecord{}, fmt.Errorf("station %s: bad elevation: %w", id, err)
	}

	return models.StationRecord{
		ID:        id,
		Latitude:  lat,
		Longitude: lon,
		Elevation: elev,
		State:     field(38, 40),
		Name:      field(41, 71),
		WMOID:     field(80, 85),
	}, nil
}

func matchesPrefix(id string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
