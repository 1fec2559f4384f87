package password

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PasswordReset represents a reset token row. Only the latest non-revoked
// row per user is usable; issuing a new one revokes all prior rows.
type PasswordReset struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Token          string
	Revoked        bool
	CreatedAt      time.Time
	LastModifiedAt time.Time
}

// PasswordResetRepository defines the interface for reset token storage.
type PasswordResetRepository interface {
	CreateReset(ctx context.Context, userID uuid.UUID, token string) (PasswordReset, error)
	FindReset(ctx context.Context, token string) (PasswordReset, error)
	RevokeReset(ctx context.Context, id uuid.UUID) error
	RevokeUserResets(ctx context.Context, userID uuid.UUID) error
}
