package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/helpdesk/internal/database"
	"github.com/allisson/helpdesk/internal/user/domain"

	apperrors "github.com/allisson/helpdesk/internal/errors"
)

const mysqlUserColumns = `id, name, username, email, password, role, status, created_at, updated_at`

// MySQLUserRepository handles user persistence for MySQL
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, name, username, email, password, role, status, created_at, updated_at) 
			  VALUES (?, ?, ?, ?, ?, ?, ?, NOW(6), NOW(6))`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, uuidBytes, user.Name, user.Username, user.Email, user.Password,
		user.Role, user.Status)
	if err != nil {
		// Check for unique constraint violation (duplicate username or email)
		if database.IsUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE id = ?`
	return r.getOne(ctx, query, "failed to get user by id", uuidBytes)
}

// GetByLogin retrieves a user whose username or email matches login
func (r *MySQLUserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	query := `SELECT ` + mysqlUserColumns + ` FROM users WHERE username = ? OR email = ?`
	return r.getOne(ctx, query, "failed to get user by login", login, login)
}

func (r *MySQLUserRepository) getOne(
	ctx context.Context,
	query, failure string,
	args ...any,
) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	user, err := scanMySQLUser(querier.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, failure)
	}
	return user, nil
}

// List retrieves users newest first
func (r *MySQLUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlUserColumns + ` FROM users ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users")
	}
	defer rows.Close() //nolint:errcheck

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanMySQLUser(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user")
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate users")
	}

	return users, nil
}

// Update persists name, role and status
func (r *MySQLUserRepository) Update(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE users SET name = ?, role = ?, status = ?, updated_at = NOW(6) WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, user.Name, user.Role, user.Status, uuidBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}
	return requireOneRow(result)
}

// UpdatePassword replaces the stored password hash
func (r *MySQLUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE users SET password = ?, updated_at = NOW(6) WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, hashedPassword, uuidBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user password")
	}
	return requireOneRow(result)
}

// Delete removes a user. Sessions and tickets go with it through foreign keys.
func (r *MySQLUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, uuidBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete user")
	}
	return requireOneRow(result)
}

type userScanner interface {
	Scan(dest ...any) error
}

func scanMySQLUser(row userScanner) (*domain.User, error) {
	var user domain.User
	var idBytes []byte

	if err := row.Scan(
		&idBytes, &user.Name, &user.Username, &user.Email, &user.Password,
		&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	// Convert bytes back to UUID
	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return &user, nil
}
