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

// MySQLSessionRepository implements the session ledger for MySQL using BINARY(16) UUIDs.
type MySQLSessionRepository struct {
	db *sql.DB
}

// Create inserts a new session.
func (m *MySQLSessionRepository) Create(ctx context.Context, session *sessionDomain.Session) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO sessions (id, user_id, token_hash, ip_address, user_agent, created_at, updated_at, expires_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	id, principalID, err := marshalKey(session.ID, session.PrincipalID)
	if err != nil {
		return err
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		principalID,
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
func (m *MySQLSessionRepository) Get(
	ctx context.Context,
	principalID, sessionID uuid.UUID,
) (*sessionDomain.Session, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, token_hash, ip_address, user_agent, created_at, updated_at, expires_at
			  FROM sessions WHERE id = ? AND user_id = ?`

	id, userID, err := marshalKey(sessionID, principalID)
	if err != nil {
		return nil, err
	}

	session, err := scanMySQLSession(querier.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sessionDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session")
	}

	return session, nil
}

// ReplaceToken swaps the token hash only while it still equals currentHash.
// Returns ErrSessionConflict when no row changed.
func (m *MySQLSessionRepository) ReplaceToken(
	ctx context.Context,
	principalID, sessionID uuid.UUID,
	currentHash, newHash string,
	newExpiresAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE sessions
			  SET token_hash = ?,
				  expires_at = ?,
				  updated_at = ?
			  WHERE id = ? AND user_id = ? AND token_hash = ?`

	id, userID, err := marshalKey(sessionID, principalID)
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		newHash,
		newExpiresAt,
		time.Now().UTC(),
		id,
		userID,
		currentHash,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to replace session token")
	}

	return checkSwapped(result)
}

// Delete removes one session. Missing rows are ignored.
func (m *MySQLSessionRepository) Delete(ctx context.Context, principalID, sessionID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, userID, err := marshalKey(sessionID, principalID)
	if err != nil {
		return err
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE id = ? AND user_id = ?`, id, userID); err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return nil
}

// DeleteAllByPrincipal removes every session of a principal.
func (m *MySQLSessionRepository) DeleteAllByPrincipal(ctx context.Context, principalID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	userID, err := principalID.MarshalBinary()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to marshal user id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete sessions")
	}

	return rowsAffected(result)
}

// ListByPrincipal returns a principal's sessions, newest first.
func (m *MySQLSessionRepository) ListByPrincipal(
	ctx context.Context,
	principalID uuid.UUID,
) ([]*sessionDomain.Session, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, user_id, token_hash, ip_address, user_agent, created_at, updated_at, expires_at
			  FROM sessions WHERE user_id = ? ORDER BY created_at DESC`

	userID, err := principalID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sessions")
	}
	defer func() { _ = rows.Close() }()

	sessions := make([]*sessionDomain.Session, 0)
	for rows.Next() {
		session, err := scanMySQLSession(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan session")
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate sessions")
	}

	return sessions, nil
}

// DeleteExpired removes sessions with expires_at before the given time. With dryRun
// it only counts them.
func (m *MySQLSessionRepository) DeleteExpired(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	if dryRun {
		var count int64
		err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE expires_at < ?`, before).
			Scan(&count)
		if err != nil {
			return 0, apperrors.Wrap(err, "failed to count expired sessions")
		}
		return count, nil
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}

	return rowsAffected(result)
}

// NewMySQLSessionRepository creates a new MySQL session repository.
func NewMySQLSessionRepository(db *sql.DB) *MySQLSessionRepository {
	return &MySQLSessionRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLSession(row rowScanner) (*sessionDomain.Session, error) {
	var (
		session   sessionDomain.Session
		idBytes   []byte
		userBytes []byte
	)

	if err := row.Scan(
		&idBytes,
		&userBytes,
		&session.TokenHash,
		&session.ClientMeta.IPAddress,
		&session.ClientMeta.UserAgent,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.ExpiresAt,
	); err != nil {
		return nil, err
	}

	if err := session.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal session id")
	}
	if err := session.PrincipalID.UnmarshalBinary(userBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	return &session, nil
}

func marshalKey(sessionID, principalID uuid.UUID) ([]byte, []byte, error) {
	id, err := sessionID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal session id")
	}
	userID, err := principalID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal user id")
	}
	return id, userID, nil
}
