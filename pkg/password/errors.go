package password

import "errors"

var (
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrMissingField      = errors.New("token and password are required")
	ErrInvalidResetToken = errors.New("invalid reset token")
)
