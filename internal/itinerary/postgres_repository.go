package itinerary

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tripsentry/tripsentry/internal/geo"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL itinerary repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByTouristAndID retrieves an entry scoped to a tourist.
func (r *PostgresRepository) GetByTouristAndID(ctx context.Context, touristID, entryID string) (*Entry, error) {
	query := `
		SELECT id, tourist_id, location, lat, lon, start_time, end_time, created_at, updated_at
		FROM itinerary_entries
		WHERE id = $1 AND tourist_id = $2
	`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, entryID, touristID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

// List retrieves a tourist's entries ordered by start time.
func (r *PostgresRepository) List(ctx context.Context, touristID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT id, tourist_id, location, lat, lon, start_time, end_time, created_at, updated_at
		FROM itinerary_entries
		WHERE tourist_id = $1 AND ($2::text = '' OR (start_time, id) > (
			SELECT start_time, id FROM itinerary_entries WHERE id = $2
		))
		ORDER BY start_time ASC, id ASC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, touristID, opts.Cursor, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{
		Items: entries,
	}

	// If we got more results than the limit, there are more pages
	if len(entries) > limit {
		result.Items = entries[:limit]
		result.NextCursor = entries[limit-1].ID
	}

	return result, nil
}

// Create creates a new entry.
func (r *PostgresRepository) Create(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO itinerary_entries (
			id, tourist_id, location, lat, lon, start_time, end_time, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	lat, lon := pointColumns(entry.Point)
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.TouristID,
		entry.Location,
		lat,
		lon,
		entry.Start,
		entry.End,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	return err
}

// Update updates an existing entry.
func (r *PostgresRepository) Update(ctx context.Context, entry *Entry) error {
	query := `
		UPDATE itinerary_entries SET
			location = $2,
			lat = $3,
			lon = $4,
			start_time = $5,
			end_time = $6,
			updated_at = $7
		WHERE id = $1
	`

	lat, lon := pointColumns(entry.Point)
	result, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.Location,
		lat,
		lon,
		entry.Start,
		entry.End,
		entry.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Delete deletes an entry by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM itinerary_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func pointColumns(p *geo.Point) (lat, lon *float64) {
	if p == nil {
		return nil, nil
	}
	return &p.Lat, &p.Lon
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var (
		entry Entry
		lat   *float64
		lon   *float64
	)

	err := row.Scan(
		&entry.ID,
		&entry.TouristID,
		&entry.Location,
		&lat,
		&lon,
		&entry.Start,
		&entry.End,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat != nil && lon != nil {
		entry.Point = &geo.Point{Lat: *lat, Lon: *lon}
	}

	return &entry, nil
}
