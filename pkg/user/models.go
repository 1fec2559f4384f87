package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User represents a user record in the domain model, joined with its
// status name.
type User struct {
	ID              uuid.UUID
	FirstName       string
	LastName        string
	Email           string
	Password        []byte
	LoginAttempts   int32
	Status          string
	Avatar          sql.NullString
	EmailVerifiedAt sql.NullTime
	CreatedAt       time.Time
	LastModifiedAt  time.Time
}

// UserStatus represents a row of the status reference table.
type UserStatus struct {
	ID   uuid.UUID
	Name string
}

// ActivationToken represents a one-time email ownership proof issued at
// registration and consumed at activation.
type ActivationToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	Revoked   bool
	CreatedAt time.Time
}

// InsertUserParams represents parameters for inserting a user row.
type InsertUserParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  []byte
	StatusID  uuid.UUID
}

// SaveUserParams represents parameters for persisting merged user fields.
type SaveUserParams struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Password  []byte
	Avatar    sql.NullString
}

// SearchUsersParams represents parameters for searching users.
type SearchUsersParams struct {
	Keyword string
	Limit   int32
	Offset  int32
}

// CreateUserParams is the service-level input for creating a user.
type CreateUserParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateUserParams is the service-level input for updating a user.
// Empty fields retain the stored value.
type UpdateUserParams struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Email      string
	Password   string
	AvatarPath string
}
