package login

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemLoginRepository implements LoginRepository with in-memory maps.
// Intended for tests.
type InMemLoginRepository struct {
	mu     sync.RWMutex
	tokens map[uuid.UUID]AccessToken
	roles  map[uuid.UUID][]string
}

func NewInMemLoginRepository() *InMemLoginRepository {
	return &InMemLoginRepository{
		tokens: make(map[uuid.UUID]AccessToken),
		roles:  make(map[uuid.UUID][]string),
	}
}

func (r *InMemLoginRepository) CreateAccessToken(ctx context.Context, jti, userID uuid.UUID, expireAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[jti] = AccessToken{
		Jti:       jti,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		ExpireAt:  expireAt,
	}
	return nil
}

func (r *InMemLoginRepository) RevokeAccessToken(ctx context.Context, jti uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at, ok := r.tokens[jti]
	if !ok {
		return ErrAccessTokenNotFound
	}
	at.Revoked = true
	r.tokens[jti] = at
	return nil
}

func (r *InMemLoginRepository) IsTokenRevoked(ctx context.Context, jti uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	at, ok := r.tokens[jti]
	if !ok {
		return true, nil
	}
	return at.Revoked, nil
}

func (r *InMemLoginRepository) FindUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.roles[userID], nil
}

// AssignRole grants a role to a user, for tests.
func (r *InMemLoginRepository) AssignRole(userID uuid.UUID, role string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roles[userID] = append(r.roles[userID], role)
}
