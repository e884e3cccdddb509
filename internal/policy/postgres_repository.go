package policy

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository. The
// policy lives in a single row.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL policy repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves the stored policy.
func (r *PostgresRepository) Get(ctx context.Context) (*Settings, error) {
	query := `
		SELECT baseline_score, same_area_threshold_m, inactivity_threshold_minutes,
			route_deviation_penalty, inactivity_penalty, alert_score_threshold, updated_at
		FROM safety_policy
		WHERE id = 1
	`

	var (
		settings          Settings
		inactivityMinutes int
	)

	err := r.pool.QueryRow(ctx, query).Scan(
		&settings.BaselineScore,
		&settings.SameAreaThresholdMeters,
		&inactivityMinutes,
		&settings.RouteDeviationPenalty,
		&settings.InactivityPenalty,
		&settings.AlertScoreThreshold,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPolicyNotFound
		}
		return nil, err
	}

	settings.InactivityThreshold = time.Duration(inactivityMinutes) * time.Minute
	return &settings, nil
}

// Set creates or replaces the stored policy.
func (r *PostgresRepository) Set(ctx context.Context, settings *Settings) error {
	query := `
		INSERT INTO safety_policy (
			id, baseline_score, same_area_threshold_m, inactivity_threshold_minutes,
			route_deviation_penalty, inactivity_penalty, alert_score_threshold, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			baseline_score = $1,
			same_area_threshold_m = $2,
			inactivity_threshold_minutes = $3,
			route_deviation_penalty = $4,
			inactivity_penalty = $5,
			alert_score_threshold = $6,
			updated_at = $7
	`

	_, err := r.pool.Exec(ctx, query,
		settings.BaselineScore,
		settings.SameAreaThresholdMeters,
		int(settings.InactivityThreshold/time.Minute),
		settings.RouteDeviationPenalty,
		settings.InactivityPenalty,
		settings.AlertScoreThreshold,
		settings.UpdatedAt,
	)
	return err
}
