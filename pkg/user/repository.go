package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	SearchUsers(ctx context.Context, params SearchUsersParams) ([]User, error)
	CountUsers(ctx context.Context, keyword string) (int64, error)
	InsertUser(ctx context.Context, params InsertUserParams) (User, error)
	SaveUser(ctx context.Context, params SaveUserParams) (User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	GetStatusByName(ctx context.Context, name string) (UserStatus, error)
	ActivateUser(ctx context.Context, userID, statusID uuid.UUID, verifiedAt time.Time) error

	// Auth bookkeeping used by the login and password reset flows.
	IncrementLoginAttempts(ctx context.Context, userID uuid.UUID) (int32, error)
	ResetLoginAttempts(ctx context.Context, userID uuid.UUID) error
	SetUserStatus(ctx context.Context, userID, statusID uuid.UUID) error
	ResetPassword(ctx context.Context, userID uuid.UUID, hash []byte, statusID uuid.UUID) error

	CreateActivationToken(ctx context.Context, userID uuid.UUID, token string) (ActivationToken, error)
	FindActivationToken(ctx context.Context, token string) (ActivationToken, error)
	RevokeActivationToken(ctx context.Context, id uuid.UUID) error

	// Transaction support
	WithTx(tx interface{}) UserRepository
}
