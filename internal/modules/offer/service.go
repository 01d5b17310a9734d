package offer

import (
	"context"

	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

// Service defines the catalog business logic.
type Service interface {
	// List returns one page of offers plus the total match count. Public.
	List(ctx context.Context, f ListFilter) ([]*Offer, int, error)

	// Create persists an offer with 1..N nested packages atomically. Only
	// business profiles may create.
	Create(ctx context.Context, p policy.Principal, req CreateRequest) (*Offer, error)

	// Get returns a single offer for the light detail shape.
	Get(ctx context.Context, p policy.Principal, id string) (*Offer, error)

	// Update applies a partial update; nested details are merged by
	// offer_type. Only the owning business profile may update.
	Update(ctx context.Context, p policy.Principal, id string, req UpdateRequest) (*Offer, error)

	// Delete removes an offer and its packages. Owner only.
	Delete(ctx context.Context, p policy.Principal, id string) error

	// GetDetail returns a single package. Authenticated callers only.
	GetDetail(ctx context.Context, p policy.Principal, id string) (*OfferDetail, error)
}
