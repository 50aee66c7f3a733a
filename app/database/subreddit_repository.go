package database

import (
	"database/sql"
	"fmt"
)

// SubredditRepo handles database operations for Reddit polling scopes
type SubredditRepo struct {
	db *DB
}

var _ SubredditRepository = (*SubredditRepo)(nil)

func NewSubredditRepository(db *DB) *SubredditRepo {
	return &SubredditRepo{db: db}
}

func (r *SubredditRepo) GetSubreddit(name string) (*Subreddit, error) {
	var s Subreddit
	var description sql.NullString

	err := r.db.QueryRow(`
		SELECT id, name, description, created_at, updated_at
		FROM subreddits
		WHERE name = $1
	`, name).Scan(&s.ID, &s.Name, &description, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subreddit: %w", err)
	}

	s.Description = description.String
	return &s, nil
}

func (r *SubredditRepo) ListSubreddits() ([]Subreddit, error) {
	rows, err := r.db.Query(`
		SELECT id, name, COALESCE(description, ''), created_at, updated_at
		FROM subreddits
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list subreddits: %w", err)
	}
	defer rows.Close()

	var subreddits []Subreddit
	for rows.Next() {
		var s Subreddit
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subreddit row: %w", err)
		}
		subreddits = append(subreddits, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subreddit rows: %w", err)
	}

	return subreddits, nil
}

// UpsertSubreddit registers a polling scope. An empty description leaves
// any previously discovered description in place.
func (r *SubredditRepo) UpsertSubreddit(name, description string) error {
	_, err := r.db.Exec(`
		INSERT INTO subreddits (name, description)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (name) DO UPDATE SET
			description = COALESCE(NULLIF(EXCLUDED.description, ''), subreddits.description),
			updated_at = NOW()
	`, name, description)
	if err != nil {
		return fmt.Errorf("failed to upsert subreddit: %w", err)
	}

	return nil
}

func (r *SubredditRepo) GetSubredditCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM subreddits").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get subreddit count: %w", err)
	}
	return count, nil
}
