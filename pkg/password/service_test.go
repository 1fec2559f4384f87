package password

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-user/pkg/user"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*PasswordService, *InMemPasswordResetRepository, *user.UserService) {
	t.Helper()
	users := user.NewInMemUserRepository()
	resets := NewInMemPasswordResetRepository()
	return NewPasswordService(resets, users), resets, user.NewUserService(users)
}

func createTestUser(t *testing.T, userService *user.UserService) user.User {
	t.Helper()
	ctx := context.Background()

	created, err := userService.Create(ctx, user.CreateUserParams{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Password:  "!p4ssW0rd",
	})
	require.NoError(t, err)
	return created
}

func TestForgotIssuesToken(t *testing.T) {
	svc, resets, userService := newTestService(t)
	ctx := context.Background()

	u := createTestUser(t, userService)

	reset, err := svc.Forgot(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, reset.UserID)
	assert.Len(t, reset.Token, 32)
	assert.False(t, reset.Revoked)

	rows := resets.ResetsForUser(u.ID)
	require.Len(t, rows, 1)
}

func TestForgotRejectsInvalidEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Forgot(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestForgotUnknownUserFails(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Forgot(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestSecondForgotRevokesFirstToken(t *testing.T) {
	svc, _, userService := newTestService(t)
	ctx := context.Background()

	u := createTestUser(t, userService)

	first, err := svc.Forgot(ctx, u.Email)
	require.NoError(t, err)
	second, err := svc.Forgot(ctx, u.Email)
	require.NoError(t, err)

	_, err = svc.Reset(ctx, first.Token, "newPassword1!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	_, err = svc.Reset(ctx, second.Token, "newPassword1!")
	assert.NoError(t, err)
}

func TestResetRequiresBothFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Reset(ctx, "", "newPassword1!")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = svc.Reset(ctx, "some-token", "")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestResetWithUnknownTokenFails(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Reset(context.Background(), "unknown", "newPassword1!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetActivatesAndZeroesAttempts(t *testing.T) {
	svc, resets, userService := newTestService(t)
	ctx := context.Background()

	u := createTestUser(t, userService)
	assert.Equal(t, user.StatusPending, u.Status)

	reset, err := svc.Forgot(ctx, u.Email)
	require.NoError(t, err)

	updated, err := svc.Reset(ctx, reset.Token, "newPassword1!")
	require.NoError(t, err)
	assert.Equal(t, user.StatusActive, updated.Status)
	assert.EqualValues(t, 0, updated.LoginAttempts)
	assert.NoError(t, bcrypt.CompareHashAndPassword(updated.Password, []byte("newPassword1!")))

	// Consumed token is revoked
	rows := resets.ResetsForUser(u.ID)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Revoked)

	_, err = svc.Reset(ctx, reset.Token, "another1!")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}
