package login

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-user/pkg/user"
	"golang.org/x/crypto/bcrypt"
)

// DefaultMaxLoginAttempts is the failed-login threshold after which an
// account is locked.
const DefaultMaxLoginAttempts = 5

// AuthUser is the authenticated principal returned on a successful login.
type AuthUser struct {
	UserID uuid.UUID
	Email  string
	Roles  []string
}

// LoginService verifies credentials and manages issued access tokens.
type LoginService struct {
	users            user.UserRepository
	repo             LoginRepository
	maxLoginAttempts int32
}

type LoginServiceOption func(*LoginService)

// WithMaxLoginAttempts overrides the lockout threshold.
func WithMaxLoginAttempts(max int32) LoginServiceOption {
	return func(s *LoginService) {
		if max > 0 {
			s.maxLoginAttempts = max
		}
	}
}

func NewLoginService(users user.UserRepository, repo LoginRepository, opts ...LoginServiceOption) *LoginService {
	s := &LoginService{
		users:            users,
		repo:             repo,
		maxLoginAttempts: DefaultMaxLoginAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies the email and password. The account status gates the
// attempt before the password is checked: pending and locked accounts
// are rejected outright. A failed password check increments the
// failed-login counter and locks the account once the threshold is
// reached; locked is terminal for this flow. A successful login zeroes
// the counter.
func (s *LoginService) Login(ctx context.Context, email, password string) (AuthUser, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return AuthUser{}, ErrInvalidCredentials
		}
		return AuthUser{}, err
	}

	if statusErr, found := statusErrors[u.Status]; found {
		slog.Debug("Rejected login by account status", "email", email, "status", u.Status)
		return AuthUser{}, statusErr
	}

	if bcrypt.CompareHashAndPassword(u.Password, []byte(password)) != nil {
		attempts, err := s.users.IncrementLoginAttempts(ctx, u.ID)
		if err != nil {
			return AuthUser{}, err
		}
		if attempts >= s.maxLoginAttempts {
			locked, err := s.users.GetStatusByName(ctx, user.StatusLocked)
			if err != nil {
				return AuthUser{}, err
			}
			if err := s.users.SetUserStatus(ctx, u.ID, locked.ID); err != nil {
				return AuthUser{}, err
			}
			slog.Info("Locked account after repeated failed logins", "email", email, "attempts", attempts)
			return AuthUser{}, ErrUserLocked
		}
		return AuthUser{}, ErrInvalidPassword
	}

	if err := s.users.ResetLoginAttempts(ctx, u.ID); err != nil {
		return AuthUser{}, err
	}

	roles, err := s.repo.FindUserRoles(ctx, u.ID)
	if err != nil {
		return AuthUser{}, err
	}

	return AuthUser{UserID: u.ID, Email: u.Email, Roles: roles}, nil
}

// RecordToken persists an issued token jti for later revocation checks.
func (s *LoginService) RecordToken(ctx context.Context, jti, userID uuid.UUID, expireAt time.Time) error {
	return s.repo.CreateAccessToken(ctx, jti, userID, expireAt)
}

// RevokeToken revokes the token identified by jti.
func (s *LoginService) RevokeToken(ctx context.Context, jti uuid.UUID) error {
	return s.repo.RevokeAccessToken(ctx, jti)
}

// IsTokenRevoked reports whether the token identified by jti has been
// revoked. Satisfies client.TokenChecker.
func (s *LoginService) IsTokenRevoked(ctx context.Context, jti uuid.UUID) (bool, error) {
	return s.repo.IsTokenRevoked(ctx, jti)
}
