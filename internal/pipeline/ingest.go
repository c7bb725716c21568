package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jengzang/climate-map-go/internal/models"
)

// missingValue is GHCN-D's sentinel for "no observation that day".
const missingValue = -9999

// ParseElementFile reads one merged element resource (columns ID, DATE in
// yyyymmdd, DATA_VALUE in tenths) and returns the observations for a
// single station. Temperature elements are converted to °C; precipitation
// is kept in the source unit.
func ParseElementFile(path, stationID, element string) ([]models.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open element file: %w", err)
	}
	defer f.Close()
	return parseElement(f, stationID, element)
}

func parseElement(r io.Reader, stationID, element string) ([]models.Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid element header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"ID", "DATE", "DATA_VALUE"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("element file missing column %s", required)
		}
	}

	var obs []models.Observation
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid element record: %w", err)
		}
		if rec[col["ID"]] != stationID {
			continue
		}
		date, err := time.Parse("20060102", rec[col["DATE"]])
		if err != nil {
			return nil, fmt.Errorf("bad observation date %q: %w", rec[col["DATE"]], err)
		}

		o := models.Observation{Date: date}
		raw, err := strconv.ParseFloat(rec[col["DATA_VALUE"]], 64)
		if err == nil && raw != missingValue {
			o.Valid = true
			o.Value = convertValue(element, raw)
		}
		obs = append(obs, o)
	}
	return obs, nil
}

// convertValue turns tenths-of-degree temperatures into °C. Precipitation
// is passed through unchanged.
func convertValue(element string, raw float64) float64 {
	switch element {
	case models.ElementTMin, models.ElementTMax:
		return raw / 10
	default:
		return raw
	}
}
