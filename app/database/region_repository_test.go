package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestListRegions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRegionRepository(db)

	now := time.Date(2022, 1, 17, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "woeid", "name", "location_type", "parent_woeid", "country", "country_code", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT (.+) FROM twitter_regions").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("id-1", 1, "Worldwide", "Supername", nil, "", "", now, now).
			AddRow("id-2", 3369, "Ottawa", "Town", 23424775, "Canada", "CA", now, now))

	regions, err := repo.ListRegions()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(regions))
	}
	if regions[0].ParentWOEID != nil {
		t.Error("Expected nil parent woeid for Worldwide")
	}
	if regions[1].ParentWOEID == nil || *regions[1].ParentWOEID != 23424775 {
		t.Error("Expected parent woeid 23424775 for Ottawa")
	}
	if regions[1].Country != "Canada" || regions[1].CountryCode != "CA" {
		t.Errorf("Unexpected country fields: %+v", regions[1])
	}
}

func TestUpsertRegion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRegionRepository(db)

	parent := int64(23424775)
	mock.ExpectExec("INSERT INTO twitter_regions").
		WithArgs(int64(3369), "Ottawa", "Town", &parent, "Canada", "CA").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertRegion(TwitterRegion{
		WOEID:        3369,
		Name:         "Ottawa",
		LocationType: "Town",
		ParentWOEID:  &parent,
		Country:      "Canada",
		CountryCode:  "CA",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestGetRegionCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRegionRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(64))

	count, err := repo.GetRegionCount()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 64 {
		t.Errorf("Expected count 64, got %d", count)
	}
}
