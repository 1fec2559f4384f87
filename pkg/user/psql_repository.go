package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is an interface that allows us to use either a database pool or a
// transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db DBTX
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `
	u.id, u.first_name, u.last_name, u.email, u.password, u.login_attempts,
	s.name, u.avatar, u.email_verified_at, u.created_at, u.last_modified_at
`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Password,
		&u.LoginAttempts,
		&u.Status,
		&u.Avatar,
		&u.EmailVerifiedAt,
		&u.CreatedAt,
		&u.LastModifiedAt,
	)
	return u, err
}

// GetUser retrieves a user by ID
func (r *PostgresUserRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users u
		JOIN user_statuses s ON u.user_status_id = s.id
		WHERE u.id = $1
	`

	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		slog.Error("Failed to get user", "err", err, "id", id)
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email
func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users u
		JOIN user_statuses s ON u.user_status_id = s.id
		WHERE u.email = $1
	`

	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		slog.Error("Failed to get user by email", "err", err, "email", email)
		return User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// SearchUsers retrieves users matching the keyword, newest first
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, params SearchUsersParams) ([]User, error) {
	query := `
		SELECT` + userColumns + `
		FROM users u
		JOIN user_statuses s ON u.user_status_id = s.id
		WHERE $1 = ''
		   OR u.first_name ILIKE '%' || $1 || '%'
		   OR u.last_name ILIKE '%' || $1 || '%'
		   OR u.email ILIKE '%' || $1 || '%'
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, params.Keyword, params.Limit, params.Offset)
	if err != nil {
		slog.Error("Failed to search users", "err", err)
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			slog.Error("Failed to scan user", "err", err)
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over users: %w", err)
	}
	return users, nil
}

// CountUsers returns the number of users matching the keyword
func (r *PostgresUserRepository) CountUsers(ctx context.Context, keyword string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM users u
		WHERE $1 = ''
		   OR u.first_name ILIKE '%' || $1 || '%'
		   OR u.last_name ILIKE '%' || $1 || '%'
		   OR u.email ILIKE '%' || $1 || '%'
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, keyword).Scan(&count); err != nil {
		slog.Error("Failed to count users", "err", err)
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// InsertUser creates a new user row
func (r *PostgresUserRepository) InsertUser(ctx context.Context, params InsertUserParams) (User, error) {
	query := `
		INSERT INTO users (first_name, last_name, email, password, user_status_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		params.FirstName,
		params.LastName,
		params.Email,
		params.Password,
		params.StatusID,
	).Scan(&id)
	if err != nil {
		slog.Error("Failed to insert user", "err", err, "email", params.Email)
		return User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	return r.GetUser(ctx, id)
}

// SaveUser persists merged user fields
func (r *PostgresUserRepository) SaveUser(ctx context.Context, params SaveUserParams) (User, error) {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, password = $5,
		    avatar = $6, last_modified_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		params.ID,
		params.FirstName,
		params.LastName,
		params.Email,
		params.Password,
		params.Avatar,
	)
	if err != nil {
		slog.Error("Failed to save user", "err", err, "id", params.ID)
		return User{}, fmt.Errorf("failed to save user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return User{}, ErrUserNotFound
	}

	return r.GetUser(ctx, params.ID)
}

// DeleteUser removes a user row
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		slog.Error("Failed to delete user", "err", err, "id", id)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetStatusByName retrieves a status row by name
func (r *PostgresUserRepository) GetStatusByName(ctx context.Context, name string) (UserStatus, error) {
	var status UserStatus
	err := r.db.QueryRow(ctx, `SELECT id, name FROM user_statuses WHERE name = $1`, name).
		Scan(&status.ID, &status.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserStatus{}, ErrUserStatusNotFound
		}
		slog.Error("Failed to get user status", "err", err, "name", name)
		return UserStatus{}, fmt.Errorf("failed to get user status: %w", err)
	}
	return status, nil
}

// ActivateUser sets the user's status and stamps the verification time
func (r *PostgresUserRepository) ActivateUser(ctx context.Context, userID, statusID uuid.UUID, verifiedAt time.Time) error {
	query := `
		UPDATE users
		SET user_status_id = $2, email_verified_at = $3, last_modified_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, userID, statusID, verifiedAt)
	if err != nil {
		slog.Error("Failed to activate user", "err", err, "id", userID)
		return fmt.Errorf("failed to activate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// IncrementLoginAttempts bumps the failed-login counter in a single
// UPDATE and returns the new count, so concurrent failures cannot race
// past the lockout threshold.
func (r *PostgresUserRepository) IncrementLoginAttempts(ctx context.Context, userID uuid.UUID) (int32, error) {
	query := `
		UPDATE users
		SET login_attempts = login_attempts + 1, last_modified_at = now()
		WHERE id = $1
		RETURNING login_attempts
	`

	var attempts int32
	err := r.db.QueryRow(ctx, query, userID).Scan(&attempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		slog.Error("Failed to increment login attempts", "err", err, "id", userID)
		return 0, fmt.Errorf("failed to increment login attempts: %w", err)
	}
	return attempts, nil
}

// ResetLoginAttempts zeroes the failed-login counter
func (r *PostgresUserRepository) ResetLoginAttempts(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE users
		SET login_attempts = 0, last_modified_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		slog.Error("Failed to reset login attempts", "err", err, "id", userID)
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetUserStatus moves the user to the given status
func (r *PostgresUserRepository) SetUserStatus(ctx context.Context, userID, statusID uuid.UUID) error {
	query := `
		UPDATE users
		SET user_status_id = $2, last_modified_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, userID, statusID)
	if err != nil {
		slog.Error("Failed to set user status", "err", err, "id", userID)
		return fmt.Errorf("failed to set user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ResetPassword replaces the password hash, zeroes the failed-login
// counter and moves the user to the given status in one statement
func (r *PostgresUserRepository) ResetPassword(ctx context.Context, userID uuid.UUID, hash []byte, statusID uuid.UUID) error {
	query := `
		UPDATE users
		SET password = $2, login_attempts = 0, user_status_id = $3,
		    last_modified_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, userID, hash, statusID)
	if err != nil {
		slog.Error("Failed to reset password", "err", err, "id", userID)
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateActivationToken inserts an activation token for the user
func (r *PostgresUserRepository) CreateActivationToken(ctx context.Context, userID uuid.UUID, token string) (ActivationToken, error) {
	query := `
		INSERT INTO activation_tokens (user_id, token)
		VALUES ($1, $2)
		RETURNING id, user_id, token, revoked, created_at
	`

	var at ActivationToken
	err := r.db.QueryRow(ctx, query, userID, token).
		Scan(&at.ID, &at.UserID, &at.Token, &at.Revoked, &at.CreatedAt)
	if err != nil {
		slog.Error("Failed to create activation token", "err", err, "userId", userID)
		return ActivationToken{}, fmt.Errorf("failed to create activation token: %w", err)
	}
	return at, nil
}

// FindActivationToken retrieves a non-revoked activation token by value
func (r *PostgresUserRepository) FindActivationToken(ctx context.Context, token string) (ActivationToken, error) {
	query := `
		SELECT id, user_id, token, revoked, created_at
		FROM activation_tokens
		WHERE token = $1 AND NOT revoked
	`

	var at ActivationToken
	err := r.db.QueryRow(ctx, query, token).
		Scan(&at.ID, &at.UserID, &at.Token, &at.Revoked, &at.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ActivationToken{}, ErrActivationTokenNotFound
		}
		slog.Error("Failed to find activation token", "err", err)
		return ActivationToken{}, fmt.Errorf("failed to find activation token: %w", err)
	}
	return at, nil
}

// RevokeActivationToken marks an activation token consumed
func (r *PostgresUserRepository) RevokeActivationToken(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE activation_tokens SET revoked = true WHERE id = $1`, id)
	if err != nil {
		slog.Error("Failed to revoke activation token", "err", err, "id", id)
		return fmt.Errorf("failed to revoke activation token: %w", err)
	}
	return nil
}

// WithTx returns a new repository bound to the given transaction
func (r *PostgresUserRepository) WithTx(tx interface{}) UserRepository {
	if tx == nil {
		return r
	}

	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return r
	}

	return &PostgresUserRepository{db: pgxTx}
}
