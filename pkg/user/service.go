package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/simple-user/pkg/notice"
	"github.com/tendant/simple-user/pkg/notification"
	"github.com/tendant/simple-user/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultResultsPerPage = 15

	activationTokenLength = 32
)

// TxBeginner starts a database transaction. Satisfied by pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// UserService implements registration, activation and user CRUD.
type UserService struct {
	repo                UserRepository
	txBeginner          TxBeginner
	notificationManager *notification.NotificationManager
	resultsPerPage      int
}

// UserServiceOption configures a UserService.
type UserServiceOption func(*UserService)

// WithTxBeginner enables transactional user creation. Without it the
// user row and activation token are written without atomicity, which is
// acceptable only for the in-memory repository.
func WithTxBeginner(txBeginner TxBeginner) UserServiceOption {
	return func(s *UserService) {
		s.txBeginner = txBeginner
	}
}

// WithNotificationManager enables email side effects.
func WithNotificationManager(nm *notification.NotificationManager) UserServiceOption {
	return func(s *UserService) {
		s.notificationManager = nm
	}
}

// WithResultsPerPage overrides the default search page size.
func WithResultsPerPage(n int) UserServiceOption {
	return func(s *UserService) {
		if n > 0 {
			s.resultsPerPage = n
		}
	}
}

func NewUserService(repo UserRepository, opts ...UserServiceOption) *UserService {
	s := &UserService{
		repo:           repo,
		resultsPerPage: DefaultResultsPerPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResultsPerPage reports the configured default page size.
func (s *UserService) ResultsPerPage() int {
	return s.resultsPerPage
}

// Search returns a page of users matching the keyword, newest first,
// along with the total match count.
func (s *UserService) Search(ctx context.Context, keyword string, page, limit int) ([]User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.resultsPerPage
	}

	total, err := s.repo.CountUsers(ctx, keyword)
	if err != nil {
		return nil, 0, err
	}

	users, err := s.repo.SearchUsers(ctx, SearchUsersParams{
		Keyword: keyword,
		Limit:   int32(limit),
		Offset:  int32((page - 1) * limit),
	})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Create registers a user in pending status with one activation token.
// The user row and token row are written in a single transaction; the
// sign-up notification is sent after commit.
func (s *UserService) Create(ctx context.Context, params CreateUserParams) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Failed hashing password", "err", err)
		return User{}, fmt.Errorf("failed hashing password: %w", err)
	}

	status, err := s.repo.GetStatusByName(ctx, StatusPending)
	if err != nil {
		return User{}, err
	}

	token := utils.GenerateRandomString(activationTokenLength)

	var created User
	insert := func(repo UserRepository) error {
		created, err = repo.InsertUser(ctx, InsertUserParams{
			FirstName: params.FirstName,
			LastName:  params.LastName,
			Email:     params.Email,
			Password:  hash,
			StatusID:  status.ID,
		})
		if err != nil {
			return err
		}
		_, err = repo.CreateActivationToken(ctx, created.ID, token)
		return err
	}

	if s.txBeginner != nil {
		tx, err := s.txBeginner.Begin(ctx)
		if err != nil {
			slog.Error("Failed to begin transaction", "err", err)
			return User{}, fmt.Errorf("failed to begin transaction: %w", err)
		}
		if err := insert(s.repo.WithTx(tx)); err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Error("Failed to rollback transaction", "err", rbErr)
			}
			return User{}, err
		}
		if err := tx.Commit(ctx); err != nil {
			slog.Error("Failed to commit transaction", "err", err)
			return User{}, fmt.Errorf("failed to commit transaction: %w", err)
		}
	} else {
		if err := insert(s.repo); err != nil {
			return User{}, err
		}
	}

	// The user row is committed at this point; a failed notification must
	// not surface as a failed registration, or retries would hit the
	// unique email constraint.
	if err := s.sendSignupNotice(created, token); err != nil {
		slog.Error("Failed sending sign-up notification", "err", err, "email", created.Email)
	}

	return created, nil
}

func (s *UserService) sendSignupNotice(u User, token string) error {
	if s.notificationManager == nil {
		return nil
	}
	return s.notificationManager.Send(notice.SignupNotice, notification.NotificationData{
		To: u.Email,
		Data: map[string]string{
			"FirstName": u.FirstName,
			"Token":     token,
			"Link":      fmt.Sprintf("%s/activate/%s", s.notificationManager.BaseUrl, token),
		},
	})
}

// Update merges the provided fields into the stored user. Empty password
// retains the stored hash; empty avatar path retains the stored avatar.
func (s *UserService) Update(ctx context.Context, params UpdateUserParams) (User, error) {
	existing, err := s.repo.GetUser(ctx, params.ID)
	if err != nil {
		return User{}, err
	}

	save := SaveUserParams{
		ID:        existing.ID,
		FirstName: existing.FirstName,
		LastName:  existing.LastName,
		Email:     existing.Email,
		Password:  existing.Password,
		Avatar:    existing.Avatar,
	}
	if params.FirstName != "" {
		save.FirstName = params.FirstName
	}
	if params.LastName != "" {
		save.LastName = params.LastName
	}
	if params.Email != "" {
		save.Email = params.Email
	}
	if params.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("Failed hashing password", "err", err)
			return User{}, fmt.Errorf("failed hashing password: %w", err)
		}
		save.Password = hash
	}
	if params.AvatarPath != "" {
		save.Avatar = utils.ToNullString(params.AvatarPath)
	}

	return s.repo.SaveUser(ctx, save)
}

// Delete removes a user record.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return false, err
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// ActivateByToken consumes an activation token, moving the owning user
// to active status and stamping email verification.
func (s *UserService) ActivateByToken(ctx context.Context, token string) (User, error) {
	at, err := s.repo.FindActivationToken(ctx, token)
	if err != nil {
		return User{}, err
	}

	status, err := s.repo.GetStatusByName(ctx, StatusActive)
	if err != nil {
		return User{}, err
	}

	if err := s.repo.ActivateUser(ctx, at.UserID, status.ID, time.Now().UTC()); err != nil {
		return User{}, err
	}
	if err := s.repo.RevokeActivationToken(ctx, at.ID); err != nil {
		return User{}, err
	}

	return s.repo.GetUser(ctx, at.UserID)
}

// FindByEmail looks up a user by email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

// FindByID looks up a user by id.
func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.GetUser(ctx, id)
}
