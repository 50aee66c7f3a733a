package database

import (
	"database/sql"
	"fmt"
)

// RegionRepo handles database operations for Twitter trend locations
type RegionRepo struct {
	db *DB
}

var _ RegionRepository = (*RegionRepo)(nil)

func NewRegionRepository(db *DB) *RegionRepo {
	return &RegionRepo{db: db}
}

func (r *RegionRepo) ListRegions() ([]TwitterRegion, error) {
	rows, err := r.db.Query(`
		SELECT id, woeid, name, COALESCE(location_type, ''), parent_woeid,
		       COALESCE(country, ''), COALESCE(country_code, ''),
		       created_at, updated_at
		FROM twitter_regions
		ORDER BY woeid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	var regions []TwitterRegion
	for rows.Next() {
		var region TwitterRegion
		var parentWOEID sql.NullInt64
		err := rows.Scan(&region.ID, &region.WOEID, &region.Name, &region.LocationType,
			&parentWOEID, &region.Country, &region.CountryCode,
			&region.CreatedAt, &region.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan region row: %w", err)
		}
		if parentWOEID.Valid {
			region.ParentWOEID = &parentWOEID.Int64
		}
		regions = append(regions, region)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating region rows: %w", err)
	}

	return regions, nil
}

// UpsertRegion inserts or refreshes a trend location keyed by WOEID.
func (r *RegionRepo) UpsertRegion(region TwitterRegion) error {
	_, err := r.db.Exec(`
		INSERT INTO twitter_regions (woeid, name, location_type, parent_woeid, country, country_code)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (woeid) DO UPDATE SET
			name = EXCLUDED.name,
			location_type = EXCLUDED.location_type,
			parent_woeid = EXCLUDED.parent_woeid,
			country = EXCLUDED.country,
			country_code = EXCLUDED.country_code,
			updated_at = NOW()
	`, region.WOEID, region.Name, region.LocationType, region.ParentWOEID,
		region.Country, region.CountryCode)
	if err != nil {
		return fmt.Errorf("failed to upsert region: %w", err)
	}

	return nil
}

func (r *RegionRepo) GetRegionCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM twitter_regions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get region count: %w", err)
	}
	return count, nil
}
