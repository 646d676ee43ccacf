// Package repository implements the session ledger on PostgreSQL, MySQL and Redis.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/helpdesk/internal/database"
	apperrors "github.com/allisson/helpdesk/internal/errors"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

// PostgreSQLSessionRepository implements the session ledger for PostgreSQL.
// Rotation is a single conditional UPDATE, so the row lock serializes racing refreshes.
type PostgreSQLSessionRepository struct {
	db *sql.DB
}

// Create inserts a new session.
func (p *PostgreSQLSessionRepository) Create(ctx context.Context, session *sessionDomain.Session) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, created_at, updated_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID,
		session.PrincipalID,
		session.TokenHash,
		session.ClientMeta.IPAddress,
		session.ClientMeta.UserAgent,
		session.CreatedAt,
		session.UpdatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}
	return nil
}

// Get retrieves a session of a principal. Returns ErrSessionNotFound if absent.
func (p *PostgreSQLSessionRepository) Get(
	ctx context.Context,
	principalID, sessionID uuid.UUID,
) (*sessionDomain.Session, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, token_hash, ip_address, user_agent, created_at, updated_at, expires_at
			  FROM sessions WHERE id = $1 AND user_id = $2`

	var session sessionDomain.Session
	err := querier.QueryRowContext(ctx, query, sessionID, principalID).Scan(
		&session.ID,
		&session.PrincipalID,
		&session.TokenHash,
		&session.ClientMeta.IPAddress,
		&session.ClientMeta.UserAgent,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sessionDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session")
	}

	return &session, nil
}

// ReplaceToken swaps the token hash only while it still equals currentHash.
// Returns ErrSessionConflict when no row matched.
func (p *PostgreSQLSessionRepository) ReplaceToken(
	ctx context.Context,
	principalID, sessionID uuid.UUID,
	currentHash, newHash string,
	newExpiresAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE sessions
			  SET token_hash = $1,
				  expires_at = $2,
				  updated_at = $3
			  WHERE id = $4 AND user_id = $5 AND token_hash = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		newHash,
		newExpiresAt,
		time.Now().UTC(),
		sessionID,
		principalID,
		currentHash,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to replace session token")
	}

	return checkSwapped(result)
}

// Delete removes one session. Missing rows are ignored.
func (p *PostgreSQLSessionRepository) Delete(ctx context.Context, principalID, sessionID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM sessions WHERE id = $1 AND user_id = $2`

	if _, err := querier.ExecContext(ctx, query, sessionID, principalID); err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return nil
}

// DeleteAllByPrincipal removes every session of a principal.
func (p *PostgreSQLSessionRepository) DeleteAllByPrincipal(
	ctx context.Context,
	principalID uuid.UUID,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, principalID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete sessions")
	}

	return rowsAffected(result)
}

// ListByPrincipal returns a principal's sessions, newest first.
func (p *PostgreSQLSessionRepository) ListByPrincipal(
	ctx context.Context,
	principalID uuid.UUID,
) ([]*sessionDomain.Session, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, token_hash, ip_address, user_agent, created_at, updated_at, expires_at
			  FROM sessions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, principalID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sessions")
	}
	defer func() { _ = rows.Close() }()

	sessions := make([]*sessionDomain.Session, 0)
	for rows.Next() {
		var session sessionDomain.Session
		if err := rows.Scan(
			&session.ID,
			&session.PrincipalID,
			&session.TokenHash,
			&session.ClientMeta.IPAddress,
			&session.ClientMeta.UserAgent,
			&session.CreatedAt,
			&session.UpdatedAt,
			&session.ExpiresAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan session")
		}
		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate sessions")
	}

	return sessions, nil
}

// DeleteExpired removes sessions with expires_at before the given time. With dryRun
// it returns the SELECT COUNT(*) of the same predicate instead.
func (p *PostgreSQLSessionRepository) DeleteExpired(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE expires_at < $1`, before).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count expired sessions")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}

	return rowsAffected(result)
}

// NewPostgreSQLSessionRepository creates a new PostgreSQL session repository.
func NewPostgreSQLSessionRepository(db *sql.DB) *PostgreSQLSessionRepository {
	return &PostgreSQLSessionRepository{db: db}
}

func rowsAffected(result sql.Result) (int64, error) {
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get affected rows count")
	}
	return count, nil
}

func checkSwapped(result sql.Result) error {
	count, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if count == 0 {
		return sessionDomain.ErrSessionConflict
	}
	return nil
}
