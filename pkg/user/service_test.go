package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-user/pkg/notice"
	"github.com/tendant/simple-user/pkg/notification"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*UserService, *InMemUserRepository) {
	t.Helper()
	repo := NewInMemUserRepository()
	return NewUserService(repo), repo
}

func createTestUser(t *testing.T, svc *UserService, email string) User {
	t.Helper()
	created, err := svc.Create(context.Background(), CreateUserParams{
		FirstName: "John",
		LastName:  "Doe",
		Email:     email,
		Password:  "!p4ssW0rd",
	})
	require.NoError(t, err)
	return created
}

func TestCreateUserStartsPending(t *testing.T) {
	svc, repo := newTestService(t)

	created := createTestUser(t, svc, "john@example.com")

	assert.Equal(t, StatusPending, created.Status)
	assert.False(t, created.EmailVerifiedAt.Valid)
	assert.NoError(t, bcrypt.CompareHashAndPassword(created.Password, []byte("!p4ssW0rd")))

	tokens := repo.ActivationTokensForUser(created.ID)
	require.Len(t, tokens, 1)
	assert.False(t, tokens[0].Revoked)
	assert.Len(t, tokens[0].Token, 32)
}

func TestCreateSendsSignupNotification(t *testing.T) {
	repo := NewInMemUserRepository()
	mock := notification.NewMockNotifier()
	nm, err := notice.NewNotificationManager("http://localhost:3000",
		notice.WithNotifier(notification.EmailSystem, mock))
	require.NoError(t, err)

	svc := NewUserService(repo, WithNotificationManager(nm))
	created := createTestUser(t, svc, "john@example.com")

	sent := mock.SentTo("john@example.com")
	require.Len(t, sent, 1)
	assert.Equal(t, notice.SignupNotice, sent[0].Type)

	tokens := repo.ActivationTokensForUser(created.ID)
	require.Len(t, tokens, 1)
	assert.Equal(t, tokens[0].Token, sent[0].Data.Data["Token"])
}

func TestCreateSucceedsWhenNotificationFails(t *testing.T) {
	repo := NewInMemUserRepository()
	mock := notification.NewMockNotifier()
	mock.Err = errors.New("smtp unreachable")
	nm, err := notice.NewNotificationManager("http://localhost:3000",
		notice.WithNotifier(notification.EmailSystem, mock))
	require.NoError(t, err)

	svc := NewUserService(repo, WithNotificationManager(nm))

	// The committed user survives the failed notification
	created := createTestUser(t, svc, "john@example.com")
	assert.Equal(t, StatusPending, created.Status)
	require.Len(t, repo.ActivationTokensForUser(created.ID), 1)

	found, err := svc.FindByEmail(context.Background(), "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestActivateByToken(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created := createTestUser(t, svc, "john@example.com")
	token := repo.ActivationTokensForUser(created.ID)[0].Token

	activated, err := svc.ActivateByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, activated.Status)
	assert.True(t, activated.EmailVerifiedAt.Valid)

	tokens := repo.ActivationTokensForUser(created.ID)
	require.Len(t, tokens, 1)
	assert.True(t, tokens[0].Revoked)

	// Consumed tokens cannot activate twice
	_, err = svc.ActivateByToken(ctx, token)
	assert.ErrorIs(t, err, ErrActivationTokenNotFound)
}

func TestActivateUnknownTokenFails(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ActivateByToken(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrActivationTokenNotFound)
}

func TestUpdateWithoutPasswordRetainsHash(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := createTestUser(t, svc, "john@example.com")

	updated, err := svc.Update(ctx, UpdateUserParams{
		ID:        created.ID,
		FirstName: "Johnny",
	})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.FirstName)
	assert.Equal(t, "Doe", updated.LastName)
	assert.NoError(t, bcrypt.CompareHashAndPassword(updated.Password, []byte("!p4ssW0rd")))
}

func TestUpdateWithPasswordReplacesHash(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := createTestUser(t, svc, "john@example.com")

	updated, err := svc.Update(ctx, UpdateUserParams{
		ID:       created.ID,
		Password: "newPassword1!",
	})
	require.NoError(t, err)
	assert.Error(t, bcrypt.CompareHashAndPassword(updated.Password, []byte("!p4ssW0rd")))
	assert.NoError(t, bcrypt.CompareHashAndPassword(updated.Password, []byte("newPassword1!")))
}

func TestUpdateWithoutAvatarRetainsPath(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := createTestUser(t, svc, "john@example.com")

	withAvatar, err := svc.Update(ctx, UpdateUserParams{
		ID:         created.ID,
		AvatarPath: "avatars/abc.jpg",
	})
	require.NoError(t, err)
	require.True(t, withAvatar.Avatar.Valid)

	updated, err := svc.Update(ctx, UpdateUserParams{
		ID:        created.ID,
		FirstName: "Johnny",
	})
	require.NoError(t, err)
	assert.Equal(t, "avatars/abc.jpg", updated.Avatar.String)
}

func TestUpdateUnknownUserFails(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), UpdateUserParams{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := createTestUser(t, svc, "john@example.com")

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = svc.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSearchUsers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, u := range []struct{ first, last, email string }{
		{"John", "Doe", "john@example.com"},
		{"Jane", "Doe", "jane@example.com"},
		{"Alice", "Smith", "alice@example.com"},
		{"Bob", "Brown", "bob.doe@example.com"},
	} {
		_, err := svc.Create(ctx, CreateUserParams{
			FirstName: u.first,
			LastName:  u.last,
			Email:     u.email,
			Password:  "!p4ssW0rd",
		})
		require.NoError(t, err)
	}

	users, total, err := svc.Search(ctx, "DOE", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 3)
	// Newest first
	assert.Equal(t, "bob.doe@example.com", users[0].Email)
	assert.Equal(t, "jane@example.com", users[1].Email)
	assert.Equal(t, "john@example.com", users[2].Email)

	// Pagination
	page2, total, err := svc.Search(ctx, "DOE", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page2, 1)
	assert.Equal(t, "john@example.com", page2[0].Email)
}

func TestFindByEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := createTestUser(t, svc, "john@example.com")

	found, err := svc.FindByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
