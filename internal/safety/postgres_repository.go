package safety

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL assessment repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a new assessment record.
func (r *PostgresRepository) Create(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO assessments (id, tourist_id, score, reasons, evaluated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.TouristID, rec.Score, rec.Reasons, rec.EvaluatedAt,
	)
	return err
}

// Latest retrieves the most recent assessment for a tourist.
func (r *PostgresRepository) Latest(ctx context.Context, touristID string) (*Record, error) {
	query := `
		SELECT id, tourist_id, score, reasons, evaluated_at
		FROM assessments
		WHERE tourist_id = $1
		ORDER BY evaluated_at DESC
		LIMIT 1
	`

	var rec Record
	err := r.pool.QueryRow(ctx, query, touristID).Scan(
		&rec.ID, &rec.TouristID, &rec.Score, &rec.Reasons, &rec.EvaluatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ListByTourist retrieves up to limit assessments, most recent first.
func (r *PostgresRepository) ListByTourist(ctx context.Context, touristID string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, tourist_id, score, reasons, evaluated_at
		FROM assessments
		WHERE tourist_id = $1
		ORDER BY evaluated_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, touristID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.TouristID, &rec.Score, &rec.Reasons, &rec.EvaluatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
