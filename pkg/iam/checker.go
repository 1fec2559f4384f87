package iam

import (
	"context"

	"github.com/google/uuid"
)

// Checker decides whether a principal may access a resource. write
// distinguishes mutating from read-only access.
type Checker interface {
	CanAccessResource(ctx context.Context, userID uuid.UUID, resource string, write bool) (bool, error)
}
