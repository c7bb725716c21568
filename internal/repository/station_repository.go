package repository

import (
	"database/sql"
	"fmt"

	"github.com/jengzang/climate-map-go/internal/database"
	"github.com/jengzang/climate-map-go/internal/models"
)

// StationRepository handles database operations for station metadata
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository creates a new station repository
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

// UpsertStations inserts or replaces station metadata in one transaction.
func (r *StationRepository) UpsertStations(stations []models.StationRecord) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO stations
			(id, name, state, latitude, longitude, elevation, wmo_id, missing)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name=excluded.name, state=excluded.state,
				latitude=excluded.latitude, longitude=excluded.longitude,
				elevation=excluded.elevation, wmo_id=excluded.wmo_id,
				missing=excluded.missing`)
		if err != nil {
			return fmt.Errorf("failed to prepare station upsert: %w", err)
		}
		defer stmt.Close()

		for _, st := range stations {
			if _, err := stmt.Exec(st.ID, st.Name, st.State,
				st.Latitude, st.Longitude, st.Elevation, st.WMOID, st.Missing); err != nil {
				return fmt.Errorf("failed to upsert station %s: %w", st.ID, err)
			}
		}
		return nil
	})
}

// SetMissing updates the missing flag for one station.
func (r *StationRepository) SetMissing(stationID string, missing bool) error {
	_, err := r.db.Exec("UPDATE stations SET missing = ? WHERE id = ?", missing, stationID)
	if err != nil {
		return fmt.Errorf("failed to set missing flag for %s: %w", stationID, err)
	}
	return nil
}

// ListStations returns all stored stations ordered by id.
func (r *StationRepository) ListStations() ([]models.StationRecord, error) {
	rows, err := r.db.Query(`SELECT id, name, state, latitude, longitude, elevation, wmo_id, missing
		FROM stations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []models.StationRecord
	for rows.Next() {
		var st models.StationRecord
		var state, wmoID sql.NullString
		if err := rows.Scan(&st.ID, &st.Name, &state, &st.Latitude, &st.Longitude,
			&st.Elevation, &wmoID, &st.Missing); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		st.State = state.String
		st.WMOID = wmoID.String
		stations = append(stations, st)
	}
	return stations, rows.Err()
}
