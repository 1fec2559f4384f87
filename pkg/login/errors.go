package login

import (
	"errors"

	"github.com/tendant/simple-user/pkg/user"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrUserPending         = errors.New("user is pending activation")
	ErrUserLocked          = errors.New("user is locked")
	ErrAccessTokenNotFound = errors.New("access token not found")
)

// statusErrors keys the non-loginable account statuses to their errors.
// Checked before the password is verified.
var statusErrors = map[string]error{
	user.StatusPending: ErrUserPending,
	user.StatusLocked:  ErrUserLocked,
}
