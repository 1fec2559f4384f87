package user

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	dbName := "user_db"
	dbUser := "user"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "user_db.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func insertTestUser(t *testing.T, repo *PostgresUserRepository, firstName, lastName, email string) User {
	t.Helper()
	ctx := context.Background()

	status, err := repo.GetStatusByName(ctx, StatusPending)
	require.NoError(t, err)

	created, err := repo.InsertUser(ctx, InsertUserParams{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  []byte("hash"),
		StatusID:  status.ID,
	})
	require.NoError(t, err)
	return created
}

func TestPostgresUserRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewPostgresUserRepository(pool)

	t.Run("insert and get", func(t *testing.T) {
		created := insertTestUser(t, repo, "John", "Doe", "john@example.com")
		assert.Equal(t, StatusPending, created.Status)
		assert.EqualValues(t, 0, created.LoginAttempts)

		got, err := repo.GetUser(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)

		byEmail, err := repo.GetUserByEmail(ctx, "john@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
	})

	t.Run("search is case-insensitive and newest first", func(t *testing.T) {
		insertTestUser(t, repo, "Jane", "Doe", "jane.doe@example.com")
		insertTestUser(t, repo, "Alice", "Smith", "alice.smith@example.com")

		users, err := repo.SearchUsers(ctx, SearchUsersParams{Keyword: "DOE", Limit: 10})
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "jane.doe@example.com", users[0].Email)

		count, err := repo.CountUsers(ctx, "DOE")
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})

	t.Run("activation token lifecycle", func(t *testing.T) {
		created := insertTestUser(t, repo, "Tok", "User", "tok@example.com")

		at, err := repo.CreateActivationToken(ctx, created.ID, "opaque-token")
		require.NoError(t, err)
		assert.False(t, at.Revoked)

		found, err := repo.FindActivationToken(ctx, "opaque-token")
		require.NoError(t, err)
		assert.Equal(t, at.ID, found.ID)

		active, err := repo.GetStatusByName(ctx, StatusActive)
		require.NoError(t, err)
		require.NoError(t, repo.ActivateUser(ctx, created.ID, active.ID, time.Now().UTC()))
		require.NoError(t, repo.RevokeActivationToken(ctx, at.ID))

		_, err = repo.FindActivationToken(ctx, "opaque-token")
		assert.ErrorIs(t, err, ErrActivationTokenNotFound)

		refreshed, err := repo.GetUser(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, refreshed.Status)
		assert.True(t, refreshed.EmailVerifiedAt.Valid)
	})

	t.Run("transactional create rolls back", func(t *testing.T) {
		status, err := repo.GetStatusByName(ctx, StatusPending)
		require.NoError(t, err)

		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		txRepo := repo.WithTx(tx)

		_, err = txRepo.InsertUser(ctx, InsertUserParams{
			FirstName: "Ghost",
			LastName:  "User",
			Email:     "ghost@example.com",
			Password:  []byte("hash"),
			StatusID:  status.ID,
		})
		require.NoError(t, err)
		require.NoError(t, tx.Rollback(ctx))

		_, err = repo.GetUserByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		created := insertTestUser(t, repo, "Gone", "User", "gone@example.com")
		require.NoError(t, repo.DeleteUser(ctx, created.ID))
		assert.ErrorIs(t, repo.DeleteUser(ctx, created.ID), ErrUserNotFound)
	})
}
