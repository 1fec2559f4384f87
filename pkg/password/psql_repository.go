package password

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

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

// PostgresPasswordResetRepository implements PasswordResetRepository
// using PostgreSQL
type PostgresPasswordResetRepository struct {
	db DBTX
}

// NewPostgresPasswordResetRepository creates a new PostgreSQL reset
// token repository
func NewPostgresPasswordResetRepository(db DBTX) *PostgresPasswordResetRepository {
	return &PostgresPasswordResetRepository{db: db}
}

// CreateReset inserts a reset token row for the user
func (r *PostgresPasswordResetRepository) CreateReset(ctx context.Context, userID uuid.UUID, token string) (PasswordReset, error) {
	query := `
		INSERT INTO password_resets (user_id, token)
		VALUES ($1, $2)
		RETURNING id, user_id, token, revoked, created_at, last_modified_at
	`

	var pr PasswordReset
	err := r.db.QueryRow(ctx, query, userID, token).
		Scan(&pr.ID, &pr.UserID, &pr.Token, &pr.Revoked, &pr.CreatedAt, &pr.LastModifiedAt)
	if err != nil {
		slog.Error("Failed to create password reset", "err", err, "userId", userID)
		return PasswordReset{}, fmt.Errorf("failed to create password reset: %w", err)
	}
	return pr, nil
}

// FindReset retrieves a non-revoked reset token by value
func (r *PostgresPasswordResetRepository) FindReset(ctx context.Context, token string) (PasswordReset, error) {
	query := `
		SELECT id, user_id, token, revoked, created_at, last_modified_at
		FROM password_resets
		WHERE token = $1 AND NOT revoked
	`

	var pr PasswordReset
	err := r.db.QueryRow(ctx, query, token).
		Scan(&pr.ID, &pr.UserID, &pr.Token, &pr.Revoked, &pr.CreatedAt, &pr.LastModifiedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PasswordReset{}, ErrInvalidResetToken
		}
		slog.Error("Failed to find password reset", "err", err)
		return PasswordReset{}, fmt.Errorf("failed to find password reset: %w", err)
	}
	return pr, nil
}

// RevokeReset marks a reset token consumed
func (r *PostgresPasswordResetRepository) RevokeReset(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE password_resets
		SET revoked = true, last_modified_at = now()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		slog.Error("Failed to revoke password reset", "err", err, "id", id)
		return fmt.Errorf("failed to revoke password reset: %w", err)
	}
	return nil
}

// RevokeUserResets revokes every outstanding reset token for the user
func (r *PostgresPasswordResetRepository) RevokeUserResets(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE password_resets
		SET revoked = true, last_modified_at = now()
		WHERE user_id = $1 AND NOT revoked
	`

	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		slog.Error("Failed to revoke password resets", "err", err, "userId", userID)
		return fmt.Errorf("failed to revoke password resets: %w", err)
	}
	return nil
}
