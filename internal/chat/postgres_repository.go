package chat

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

// NewPostgresRepository creates a new PostgreSQL session repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a session with its ordered messages.
func (r *PostgresRepository) Get(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	err := r.pool.QueryRow(ctx, `
		SELECT id, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1
	`, sessionID).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT role, text
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.Role, &msg.Text); err != nil {
			return nil, err
		}
		session.Messages = append(session.Messages, msg)
	}
	return &session, rows.Err()
}

// AppendTurn appends a completed turn inside one transaction, creating the
// session when absent. The turn is persisted whole or not at all.
func (r *PostgresRepository) AppendTurn(ctx context.Context, sessionID string, user, assistant Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO chat_sessions (id, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (id) DO UPDATE SET updated_at = $2
	`, sessionID, now)
	if err != nil {
		return err
	}

	var nextSeq int
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1
		FROM chat_messages
		WHERE session_id = $1
	`, sessionID).Scan(&nextSeq)
	if err != nil {
		return err
	}

	batchInsert := `
		INSERT INTO chat_messages (session_id, seq, role, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, batchInsert, sessionID, nextSeq, user.Role, user.Text, now); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, batchInsert, sessionID, nextSeq+1, assistant.Role, assistant.Text, now); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
