package review

import (
	"context"

	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

// Service defines the review business logic.
type Service interface {
	// List returns reviews, optionally filtered and ordered. Public.
	List(ctx context.Context, f ListFilter) ([]*Review, error)

	// Create posts a review; customer profiles only, one review per
	// (business, reviewer) pair.
	Create(ctx context.Context, p policy.Principal, req CreateRequest) (*Review, error)

	// Get returns one review. Public.
	Get(ctx context.Context, id string) (*Review, error)

	// Update applies a partial update; original reviewer only.
	Update(ctx context.Context, p policy.Principal, id string, req UpdateRequest) (*Review, error)

	// Delete removes a review; original reviewer only.
	Delete(ctx context.Context, p policy.Principal, id string) error
}
