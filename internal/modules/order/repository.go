package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an order row, or the offer detail an order
// references, does not exist.
var ErrNotFound = errors.New("order: not found")

// Repository defines data access for orders. All reads resolve package and
// owning-business fields live through the referenced offer detail.
type Repository interface {
	Create(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// ListByCustomer returns orders placed by the given customer profile.
	ListByCustomer(ctx context.Context, profileID uuid.UUID) ([]*Order, error)

	// ListByBusiness returns orders whose referenced offer is owned by the
	// given business profile.
	ListByBusiness(ctx context.Context, profileID uuid.UUID) ([]*Order, error)

	// CountByBusinessStatus counts orders for a business profile in one
	// status.
	CountByBusinessStatus(ctx context.Context, profileID uuid.UUID, status Status) (int, error)

	// OfferDetailExists reports whether the referenced package exists.
	OfferDetailExists(ctx context.Context, detailID uuid.UUID) (bool, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	Delete(ctx context.Context, id uuid.UUID) error
}
