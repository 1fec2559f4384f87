package login

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

// PostgresLoginRepository implements LoginRepository using PostgreSQL
type PostgresLoginRepository struct {
	db DBTX
}

// NewPostgresLoginRepository creates a new PostgreSQL login repository
func NewPostgresLoginRepository(db DBTX) *PostgresLoginRepository {
	return &PostgresLoginRepository{db: db}
}

// CreateAccessToken records an issued token jti
func (r *PostgresLoginRepository) CreateAccessToken(ctx context.Context, jti, userID uuid.UUID, expireAt time.Time) error {
	query := `
		INSERT INTO access_tokens (jti, user_id, expire_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(ctx, query, jti, userID, expireAt)
	if err != nil {
		slog.Error("Failed to create access token", "err", err, "jti", jti)
		return fmt.Errorf("failed to create access token: %w", err)
	}
	return nil
}

// RevokeAccessToken marks a token jti revoked
func (r *PostgresLoginRepository) RevokeAccessToken(ctx context.Context, jti uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE access_tokens SET revoked = true WHERE jti = $1`, jti)
	if err != nil {
		slog.Error("Failed to revoke access token", "err", err, "jti", jti)
		return fmt.Errorf("failed to revoke access token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccessTokenNotFound
	}
	return nil
}

// IsTokenRevoked reports whether a token jti has been revoked. Unknown
// jtis count as revoked.
func (r *PostgresLoginRepository) IsTokenRevoked(ctx context.Context, jti uuid.UUID) (bool, error) {
	var revoked bool
	err := r.db.QueryRow(ctx, `SELECT revoked FROM access_tokens WHERE jti = $1`, jti).Scan(&revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		slog.Error("Failed to check access token", "err", err, "jti", jti)
		return false, fmt.Errorf("failed to check access token: %w", err)
	}
	return revoked, nil
}

// FindUserRoles returns the role names assigned to the user
func (r *PostgresLoginRepository) FindUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `
		SELECT r.name
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		slog.Error("Failed to find user roles", "err", err, "userId", userID)
		return nil, fmt.Errorf("failed to find user roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over roles: %w", err)
	}
	return roles, nil
}
