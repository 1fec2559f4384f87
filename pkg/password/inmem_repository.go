package password

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemPasswordResetRepository implements PasswordResetRepository with an
// in-memory map. Intended for tests.
type InMemPasswordResetRepository struct {
	mu     sync.RWMutex
	resets map[uuid.UUID]PasswordReset
}

func NewInMemPasswordResetRepository() *InMemPasswordResetRepository {
	return &InMemPasswordResetRepository{
		resets: make(map[uuid.UUID]PasswordReset),
	}
}

func (r *InMemPasswordResetRepository) CreateReset(ctx context.Context, userID uuid.UUID, token string) (PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	pr := PasswordReset{
		ID:             uuid.New(),
		UserID:         userID,
		Token:          token,
		CreatedAt:      now,
		LastModifiedAt: now,
	}
	r.resets[pr.ID] = pr
	return pr, nil
}

func (r *InMemPasswordResetRepository) FindReset(ctx context.Context, token string) (PasswordReset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, pr := range r.resets {
		if pr.Token == token && !pr.Revoked {
			return pr, nil
		}
	}
	return PasswordReset{}, ErrInvalidResetToken
}

func (r *InMemPasswordResetRepository) RevokeReset(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pr, ok := r.resets[id]
	if !ok {
		return ErrInvalidResetToken
	}
	pr.Revoked = true
	pr.LastModifiedAt = time.Now().UTC()
	r.resets[id] = pr
	return nil
}

func (r *InMemPasswordResetRepository) RevokeUserResets(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, pr := range r.resets {
		if pr.UserID == userID && !pr.Revoked {
			pr.Revoked = true
			pr.LastModifiedAt = time.Now().UTC()
			r.resets[id] = pr
		}
	}
	return nil
}

// ResetsForUser returns all reset rows for a user, for tests.
func (r *InMemPasswordResetRepository) ResetsForUser(userID uuid.UUID) []PasswordReset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []PasswordReset
	for _, pr := range r.resets {
		if pr.UserID == userID {
			out = append(out, pr)
		}
	}
	return out
}
