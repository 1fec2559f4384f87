package iam

import (
	"context"
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

// PostgresChecker implements Checker against the roles and permissions
// tables.
type PostgresChecker struct {
	db DBTX
}

func NewPostgresChecker(db DBTX) *PostgresChecker {
	return &PostgresChecker{db: db}
}

// CanAccessResource reports whether any of the user's roles carries a
// permission for the resource and access kind.
func (c *PostgresChecker) CanAccessResource(ctx context.Context, userID uuid.UUID, resource string, write bool) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM user_roles ur
			JOIN role_permissions rp ON rp.role_id = ur.role_id
			JOIN permissions p ON p.id = rp.permission_id
			WHERE ur.user_id = $1 AND p.resource = $2 AND p.write = $3
		)
	`

	var allowed bool
	if err := c.db.QueryRow(ctx, query, userID, resource, write).Scan(&allowed); err != nil {
		slog.Error("Failed to check permission", "err", err, "userId", userID, "resource", resource)
		return false, fmt.Errorf("failed to check permission: %w", err)
	}
	return allowed, nil
}
