package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/climate-map-go/internal/database"
	"github.com/jengzang/climate-map-go/internal/models"
)

const dateLayout = "2006-01-02"

// ObservationRepository handles database operations for daily observations
type ObservationRepository struct {
	db *sql.DB
}

// NewObservationRepository creates a new observation repository
func NewObservationRepository(db *sql.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

// InsertBatch stores a batch of daily observations for one station/element
// pair in a single transaction. Existing rows for the same date are
// replaced.
func (r *ObservationRepository) InsertBatch(stationID, element string, obs []models.Observation) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO observations
			(station_id, element, date, value) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare observation insert: %w", err)
		}
		defer stmt.Close()

		for _, o := range obs {
			var value interface{}
			if o.Valid {
				value = o.Value
			}
			if _, err := stmt.Exec(stationID, element, o.Date.Format(dateLayout), value); err != nil {
				return fmt.Errorf("failed to insert observation: %w", err)
			}
		}
		return nil
	})
}

// GetSeries returns all observations for a station/element pair in
// chronological order.
func (r *ObservationRepository) GetSeries(stationID, element string) ([]models.Observation, error) {
	rows, err := r.db.Query(`SELECT date, value FROM observations
		WHERE station_id = ? AND element = ? ORDER BY date`, stationID, element)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var obs []models.Observation
	for rows.Next() {
		var dateStr string
		var value sql.NullFloat64
		if err := rows.Scan(&dateStr, &value); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse observation date %q: %w", dateStr, err)
		}
		obs = append(obs, models.Observation{
			Date:  date,
			Value: value.Float64,
			Valid: value.Valid,
		})
	}
	return obs, rows.Err()
}

// Completeness returns the valid and total observation counts for a
// station/element pair since the given year.
func (r *ObservationRepository) Completeness(stationID, element string, sinceYear int) (valid, total int, err error) {
	since := fmt.Sprintf("%04d-01-01", sinceYear)
	err = r.db.QueryRow(`SELECT COUNT(value), COUNT(*) FROM observations
		WHERE station_id = ? AND element = ? AND date >= ?`,
		stationID, element, since).Scan(&valid, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count completeness: %w", err)
	}
	return valid, total, nil
}
