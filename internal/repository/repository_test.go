package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jengzang/climate-map-go/internal/database"
	"github.com/jengzang/climate-map-go/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStationUpsertAndList(t *testing.T) {
	repo := NewStationRepository(testDB(t))

	stations := []models.StationRecord{
		{ID: "JA000047662", Name: "TOKYO", Latitude: 35.683, Longitude: 139.767, Elevation: 36, WMOID: "47662"},
		{ID: "CHM00054511", Name: "BEIJING", Latitude: 39.933, Longitude: 116.283, Elevation: 55},
	}
	if err := repo.UpsertStations(stations); err != nil {
		t.Fatalf("UpsertStations: %v", err)
	}

	// Second upsert with a changed name must replace, not duplicate.
	stations[1].Name = "BEIJING CAPITAL"
	if err := repo.UpsertStations(stations[1:]); err != nil {
		t.Fatalf("UpsertStations update: %v", err)
	}

	got, err := repo.ListStations()
	if err != nil {
		t.Fatalf("ListStations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d stations, want 2", len(got))
	}
	if got[0].Name != "BEIJING CAPITAL" {
		t.Errorf("updated name = %q", got[0].Name)
	}
	if diff := cmp.Diff(stations[0], got[1]); diff != "" {
		t.Errorf("station mismatch (-want +got):\n%s", diff)
	}
}

func TestSetMissing(t *testing.T) {
	repo := NewStationRepository(testDB(t))

	if err := repo.UpsertStations([]models.StationRecord{
		{ID: "JA000047662", Name: "TOKYO"},
	}); err != nil {
		t.Fatalf("UpsertStations: %v", err)
	}
	if err := repo.SetMissing("JA000047662", true); err != nil {
		t.Fatalf("SetMissing: %v", err)
	}

	got, err := repo.ListStations()
	if err != nil {
		t.Fatalf("ListStations: %v", err)
	}
	if !got[0].Missing {
		t.Error("missing flag not persisted")
	}
}

func TestObservationRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewObservationRepository(db)

	obs := []models.Observation{
		{Date: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), Value: -5.2, Valid: true},
		{Date: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(1990, 1, 3, 0, 0, 0, 0, time.UTC), Value: 3.1, Valid: true},
	}
	if err := repo.InsertBatch("JA000047662", models.ElementTMin, obs); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}

	got, err := repo.GetSeries("JA000047662", models.ElementTMin)
	if err != nil {
		t.Fatalf("GetSeries: %v", err)
	}
	if diff := cmp.Diff(obs, got); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}

	other, err := repo.GetSeries("JA000047662", models.ElementTMax)
	if err != nil {
		t.Fatalf("GetSeries other element: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("got %d observations for unstored element", len(other))
	}
}

func TestCompletenessCountsNullsInDenominator(t *testing.T) {
	repo := NewObservationRepository(testDB(t))

	obs := []models.Observation{
		{Date: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), Value: 1, Valid: true},
		{Date: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Date: time.Date(1965, 1, 1, 0, 0, 0, 0, time.UTC), Value: 2, Valid: true},
	}
	if err := repo.InsertBatch("JA000047662", models.ElementPrcp, obs); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}

	valid, total, err := repo.Completeness("JA000047662", models.ElementPrcp, 1970)
	if err != nil {
		t.Fatalf("Completeness: %v", err)
	}
	if valid != 1 || total != 2 {
		t.Errorf("completeness = %d/%d, want 1/2 (pre-1970 row excluded)", valid, total)
	}
}
