package order

import (
	"context"

	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

// Service defines the order management business logic.
type Service interface {
	// Create places an order against an existing package. Any principal
	// with a profile may order.
	Create(ctx context.Context, p policy.Principal, req CreateRequest) (*Order, error)

	// List returns the caller's scope: a customer sees orders they placed,
	// a business sees orders on its offers. A profile-less principal is
	// rejected, not given an empty list.
	List(ctx context.Context, p policy.Principal) ([]*Order, error)

	// Get returns one order; only the involved parties or staff may read.
	Get(ctx context.Context, p policy.Principal, id string) (*Order, error)

	// UpdateStatus sets the order status; owning business or staff only.
	// Any valid status value is accepted, there is no transition graph.
	UpdateStatus(ctx context.Context, p policy.Principal, id string, req UpdateStatusRequest) (*Order, error)

	// Delete removes an order; staff only.
	Delete(ctx context.Context, p policy.Principal, id string) error

	// CountInProgress returns the in_progress order count for a business
	// profile; not-found when the id is not a business profile.
	CountInProgress(ctx context.Context, p policy.Principal, businessID string) (int, error)

	// CountCompleted is CountInProgress for completed orders.
	CountCompleted(ctx context.Context, p policy.Principal, businessID string) (int, error)
}
