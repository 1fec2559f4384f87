package password

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/tendant/simple-user/pkg/notice"
	"github.com/tendant/simple-user/pkg/notification"
	"github.com/tendant/simple-user/pkg/user"
	"github.com/tendant/simple-user/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenLength = 32

// PasswordService implements the forgot/reset workflow.
type PasswordService struct {
	repo                PasswordResetRepository
	users               user.UserRepository
	notificationManager *notification.NotificationManager
}

type PasswordServiceOption func(*PasswordService)

// WithNotificationManager enables email side effects.
func WithNotificationManager(nm *notification.NotificationManager) PasswordServiceOption {
	return func(s *PasswordService) {
		s.notificationManager = nm
	}
}

func NewPasswordService(repo PasswordResetRepository, users user.UserRepository, opts ...PasswordServiceOption) *PasswordService {
	s := &PasswordService{
		repo:  repo,
		users: users,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Forgot issues a reset token for the user owning the email. All prior
// outstanding tokens for the user are revoked first.
func (s *PasswordService) Forgot(ctx context.Context, email string) (PasswordReset, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return PasswordReset{}, ErrInvalidEmail
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return PasswordReset{}, err
	}

	if err := s.repo.RevokeUserResets(ctx, u.ID); err != nil {
		return PasswordReset{}, err
	}

	reset, err := s.repo.CreateReset(ctx, u.ID, utils.GenerateRandomString(resetTokenLength))
	if err != nil {
		return PasswordReset{}, err
	}

	if s.notificationManager != nil {
		err := s.notificationManager.Send(notice.PasswordResetInit, notification.NotificationData{
			To: u.Email,
			Data: map[string]string{
				"FirstName": u.FirstName,
				"Token":     reset.Token,
				"Link":      fmt.Sprintf("%s/password/reset/%s", s.notificationManager.BaseUrl, reset.Token),
			},
		})
		if err != nil {
			slog.Error("Failed sending password reset notification", "err", err, "email", u.Email)
			return PasswordReset{}, err
		}
	}

	return reset, nil
}

// Reset consumes a reset token: the owning user gets the new password
// hash, zeroed login attempts and active status, and the token is
// revoked.
func (s *PasswordService) Reset(ctx context.Context, token, newPassword string) (user.User, error) {
	if token == "" || newPassword == "" {
		return user.User{}, ErrMissingField
	}

	reset, err := s.repo.FindReset(ctx, token)
	if err != nil {
		return user.User{}, err
	}

	active, err := s.users.GetStatusByName(ctx, user.StatusActive)
	if err != nil {
		return user.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed hashing password", "err", err)
		return user.User{}, fmt.Errorf("failed hashing password: %w", err)
	}

	if err := s.users.ResetPassword(ctx, reset.UserID, hash, active.ID); err != nil {
		return user.User{}, err
	}
	if err := s.repo.RevokeReset(ctx, reset.ID); err != nil {
		return user.User{}, err
	}

	updated, err := s.users.GetUser(ctx, reset.UserID)
	if err != nil {
		return user.User{}, err
	}

	if s.notificationManager != nil {
		err := s.notificationManager.Send(notice.PasswordResetComplete, notification.NotificationData{
			To: updated.Email,
			Data: map[string]string{
				"FirstName": updated.FirstName,
			},
		})
		if err != nil {
			slog.Error("Failed sending password changed notification", "err", err, "email", updated.Email)
			return user.User{}, err
		}
	}

	return updated, nil
}
