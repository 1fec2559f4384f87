package login

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccessToken represents an issued access token identified by its jti.
type AccessToken struct {
	Jti       uuid.UUID
	UserID    uuid.UUID
	Revoked   bool
	CreatedAt time.Time
	ExpireAt  time.Time
}

// LoginRepository defines the interface for access token persistence and
// role lookups backing the login flow.
type LoginRepository interface {
	CreateAccessToken(ctx context.Context, jti, userID uuid.UUID, expireAt time.Time) error
	RevokeAccessToken(ctx context.Context, jti uuid.UUID) error
	IsTokenRevoked(ctx context.Context, jti uuid.UUID) (bool, error)

	FindUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
}
