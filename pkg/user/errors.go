package user

import "errors"

// Account status names, seeded in the user_statuses table.
const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusLocked  = "locked"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserStatusNotFound      = errors.New("user status not found")
	ErrActivationTokenNotFound = errors.New("activation token not found")
)
