package iam

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InMemChecker implements Checker with an in-memory grant set. Intended
// for tests.
type InMemChecker struct {
	mu     sync.RWMutex
	grants map[string]bool
}

func NewInMemChecker() *InMemChecker {
	return &InMemChecker{grants: make(map[string]bool)}
}

func grantKey(userID uuid.UUID, resource string, write bool) string {
	return fmt.Sprintf("%s|%s|%t", userID, resource, write)
}

// Grant allows the user the given access on the resource.
func (c *InMemChecker) Grant(userID uuid.UUID, resource string, write bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grants[grantKey(userID, resource, write)] = true
}

func (c *InMemChecker) CanAccessResource(ctx context.Context, userID uuid.UUID, resource string, write bool) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.grants[grantKey(userID, resource, write)], nil
}
