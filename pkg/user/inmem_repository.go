package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemUserRepository implements UserRepository with in-memory maps.
// Intended for tests and local development.
type InMemUserRepository struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]User
	order    []uuid.UUID
	statuses map[string]UserStatus
	tokens   map[uuid.UUID]ActivationToken
}

// NewInMemUserRepository creates a new in-memory user repository with the
// status reference table seeded.
func NewInMemUserRepository() *InMemUserRepository {
	statuses := make(map[string]UserStatus)
	for _, name := range []string{StatusPending, StatusActive, StatusLocked} {
		statuses[name] = UserStatus{ID: uuid.New(), Name: name}
	}
	return &InMemUserRepository{
		users:    make(map[uuid.UUID]User),
		statuses: statuses,
		tokens:   make(map[uuid.UUID]ActivationToken),
	}
}

func (r *InMemUserRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (r *InMemUserRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *InMemUserRepository) matches(u User, keyword string) bool {
	if keyword == "" {
		return true
	}
	kw := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(u.FirstName), kw) ||
		strings.Contains(strings.ToLower(u.LastName), kw) ||
		strings.Contains(strings.ToLower(u.Email), kw)
}

func (r *InMemUserRepository) SearchUsers(ctx context.Context, params SearchUsersParams) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Newest first
	var matched []User
	for i := len(r.order) - 1; i >= 0; i-- {
		u, ok := r.users[r.order[i]]
		if !ok {
			continue
		}
		if r.matches(u, params.Keyword) {
			matched = append(matched, u)
		}
	}

	start := int(params.Offset)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + int(params.Limit)
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *InMemUserRepository) CountUsers(ctx context.Context, keyword string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, u := range r.users {
		if r.matches(u, keyword) {
			count++
		}
	}
	return count, nil
}

func (r *InMemUserRepository) InsertUser(ctx context.Context, params InsertUserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var statusName string
	for name, s := range r.statuses {
		if s.ID == params.StatusID {
			statusName = name
		}
	}
	if statusName == "" {
		return User{}, ErrUserStatusNotFound
	}

	now := time.Now().UTC()
	u := User{
		ID:             uuid.New(),
		FirstName:      params.FirstName,
		LastName:       params.LastName,
		Email:          params.Email,
		Password:       params.Password,
		Status:         statusName,
		CreatedAt:      now,
		LastModifiedAt: now,
	}
	r.users[u.ID] = u
	r.order = append(r.order, u.ID)
	return u, nil
}

func (r *InMemUserRepository) SaveUser(ctx context.Context, params SaveUserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[params.ID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	u.FirstName = params.FirstName
	u.LastName = params.LastName
	u.Email = params.Email
	u.Password = params.Password
	u.Avatar = params.Avatar
	u.LastModifiedAt = time.Now().UTC()
	r.users[u.ID] = u
	return u, nil
}

func (r *InMemUserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *InMemUserRepository) GetStatusByName(ctx context.Context, name string) (UserStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.statuses[name]
	if !ok {
		return UserStatus{}, ErrUserStatusNotFound
	}
	return s, nil
}

func (r *InMemUserRepository) ActivateUser(ctx context.Context, userID, statusID uuid.UUID, verifiedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	for name, s := range r.statuses {
		if s.ID == statusID {
			u.Status = name
		}
	}
	u.EmailVerifiedAt.Time = verifiedAt
	u.EmailVerifiedAt.Valid = true
	u.LastModifiedAt = time.Now().UTC()
	r.users[userID] = u
	return nil
}

func (r *InMemUserRepository) IncrementLoginAttempts(ctx context.Context, userID uuid.UUID) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	u.LoginAttempts++
	u.LastModifiedAt = time.Now().UTC()
	r.users[userID] = u
	return u.LoginAttempts, nil
}

func (r *InMemUserRepository) ResetLoginAttempts(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.LoginAttempts = 0
	u.LastModifiedAt = time.Now().UTC()
	r.users[userID] = u
	return nil
}

func (r *InMemUserRepository) SetUserStatus(ctx context.Context, userID, statusID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	for name, s := range r.statuses {
		if s.ID == statusID {
			u.Status = name
		}
	}
	u.LastModifiedAt = time.Now().UTC()
	r.users[userID] = u
	return nil
}

func (r *InMemUserRepository) ResetPassword(ctx context.Context, userID uuid.UUID, hash []byte, statusID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Password = hash
	u.LoginAttempts = 0
	for name, s := range r.statuses {
		if s.ID == statusID {
			u.Status = name
		}
	}
	u.LastModifiedAt = time.Now().UTC()
	r.users[userID] = u
	return nil
}

func (r *InMemUserRepository) CreateActivationToken(ctx context.Context, userID uuid.UUID, token string) (ActivationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := ActivationToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}
	r.tokens[at.ID] = at
	return at, nil
}

func (r *InMemUserRepository) FindActivationToken(ctx context.Context, token string) (ActivationToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, at := range r.tokens {
		if at.Token == token && !at.Revoked {
			return at, nil
		}
	}
	return ActivationToken{}, ErrActivationTokenNotFound
}

func (r *InMemUserRepository) RevokeActivationToken(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at, ok := r.tokens[id]
	if !ok {
		return ErrActivationTokenNotFound
	}
	at.Revoked = true
	r.tokens[id] = at
	return nil
}

// ActivationTokensForUser returns all tokens issued for a user, for tests.
func (r *InMemUserRepository) ActivationTokensForUser(userID uuid.UUID) []ActivationToken {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var tokens []ActivationToken
	for _, at := range r.tokens {
		if at.UserID == userID {
			tokens = append(tokens, at)
		}
	}
	return tokens
}

// WithTx returns the repository unchanged; the in-memory store has no
// transaction isolation.
func (r *InMemUserRepository) WithTx(tx interface{}) UserRepository {
	return r
}
