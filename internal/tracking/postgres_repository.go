package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL trail repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Append stores samples for a tourist.
func (r *PostgresRepository) Append(ctx context.Context, samples []*Sample) error {
	batch := &pgx.Batch{}
	for _, s := range samples {
		batch.Queue(`
			INSERT INTO location_samples (tourist_id, lat, lon, recorded_at)
			VALUES ($1, $2, $3, $4)
		`, s.TouristID, s.Point.Lat, s.Point.Lon, s.Timestamp)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range samples {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// Latest retrieves the most recent sample for a tourist.
func (r *PostgresRepository) Latest(ctx context.Context, touristID string) (*Sample, error) {
	var sample Sample
	err := r.pool.QueryRow(ctx, `
		SELECT tourist_id, lat, lon, recorded_at
		FROM location_samples
		WHERE tourist_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`, touristID).Scan(&sample.TouristID, &sample.Point.Lat, &sample.Point.Lon, &sample.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSamples
		}
		return nil, err
	}
	return &sample, nil
}

// ListSince retrieves a tourist's samples newer than since, oldest first.
func (r *PostgresRepository) ListSince(ctx context.Context, touristID string, since time.Time, limit int) ([]*Sample, error) {
	if limit <= 0 {
		limit = 500
	}

	rows, err := r.pool.Query(ctx, `
		SELECT tourist_id, lat, lon, recorded_at
		FROM location_samples
		WHERE tourist_id = $1 AND recorded_at > $2
		ORDER BY recorded_at ASC
		LIMIT $3
	`, touristID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*Sample
	for rows.Next() {
		var sample Sample
		if err := rows.Scan(&sample.TouristID, &sample.Point.Lat, &sample.Point.Lon, &sample.Timestamp); err != nil {
			return nil, err
		}
		samples = append(samples, &sample)
	}
	return samples, rows.Err()
}

// TouristIDs lists every tourist with at least one stored sample.
func (r *PostgresRepository) TouristIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT tourist_id
		FROM location_samples
		ORDER BY tourist_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PruneBefore deletes samples older than before.
func (r *PostgresRepository) PruneBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM location_samples
		WHERE recorded_at < $1
	`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
