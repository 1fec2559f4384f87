package login

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-user/pkg/user"
)

func newTestLogin(t *testing.T) (*LoginService, *user.InMemUserRepository, *InMemLoginRepository, *user.UserService) {
	t.Helper()
	users := user.NewInMemUserRepository()
	repo := NewInMemLoginRepository()
	return NewLoginService(users, repo, WithMaxLoginAttempts(3)), users, repo, user.NewUserService(users)
}

func createActiveUser(t *testing.T, userService *user.UserService, users *user.InMemUserRepository) user.User {
	t.Helper()
	ctx := context.Background()

	created, err := userService.Create(ctx, user.CreateUserParams{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Password:  "!p4ssW0rd",
	})
	require.NoError(t, err)

	token := users.ActivationTokensForUser(created.ID)[0].Token
	activated, err := userService.ActivateByToken(ctx, token)
	require.NoError(t, err)
	return activated
}

func TestLoginSuccess(t *testing.T) {
	svc, users, repo, userService := newTestLogin(t)
	ctx := context.Background()

	u := createActiveUser(t, userService, users)
	repo.AssignRole(u.ID, "admin")

	authUser, err := svc.Login(ctx, u.Email, "!p4ssW0rd")
	require.NoError(t, err)
	assert.Equal(t, u.ID, authUser.UserID)
	assert.Equal(t, u.Email, authUser.Email)
	assert.Equal(t, []string{"admin"}, authUser.Roles)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _, _ := newTestLogin(t)

	_, err := svc.Login(context.Background(), "missing@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginPendingRejectedBeforePassword(t *testing.T) {
	svc, _, _, userService := newTestLogin(t)
	ctx := context.Background()

	created, err := userService.Create(ctx, user.CreateUserParams{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "!p4ssW0rd",
	})
	require.NoError(t, err)
	require.Equal(t, user.StatusPending, created.Status)

	// Correct password still rejected while pending
	_, err = svc.Login(ctx, created.Email, "!p4ssW0rd")
	assert.ErrorIs(t, err, ErrUserPending)
}

func TestLockoutAfterRepeatedFailures(t *testing.T) {
	svc, users, _, userService := newTestLogin(t)
	ctx := context.Background()

	u := createActiveUser(t, userService, users)

	_, err := svc.Login(ctx, u.Email, "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = svc.Login(ctx, u.Email, "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	// Third failure reaches the threshold and locks the account
	_, err = svc.Login(ctx, u.Email, "wrong")
	assert.ErrorIs(t, err, ErrUserLocked)

	locked, err := users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.StatusLocked, locked.Status)

	// Locked is checked before the password: the correct password is
	// rejected without touching the attempt counter
	_, err = svc.Login(ctx, u.Email, "!p4ssW0rd")
	assert.ErrorIs(t, err, ErrUserLocked)

	after, err := users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, locked.LoginAttempts, after.LoginAttempts)
}

func TestSuccessfulLoginResetsAttempts(t *testing.T) {
	svc, users, _, userService := newTestLogin(t)
	ctx := context.Background()

	u := createActiveUser(t, userService, users)

	_, err := svc.Login(ctx, u.Email, "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = svc.Login(ctx, u.Email, "!p4ssW0rd")
	require.NoError(t, err)

	refreshed, err := users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, refreshed.LoginAttempts)
}

func TestTokenRevocation(t *testing.T) {
	svc, _, _, _ := newTestLogin(t)
	ctx := context.Background()

	jti := uuid.New()
	userID := uuid.New()

	require.NoError(t, svc.RecordToken(ctx, jti, userID, time.Now().UTC().Add(time.Hour)))

	revoked, err := svc.IsTokenRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.RevokeToken(ctx, jti))

	revoked, err = svc.IsTokenRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Unknown jtis count as revoked
	revoked, err = svc.IsTokenRevoked(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevokeUnknownTokenFails(t *testing.T) {
	svc, _, _, _ := newTestLogin(t)

	err := svc.RevokeToken(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAccessTokenNotFound)
}
