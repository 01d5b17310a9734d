package offer

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when an offer or detail row does not exist.
	ErrNotFound = errors.New("offer: not found")

	// ErrDuplicateTier is returned when an insert collides with the
	// (offer, offer_type) uniqueness constraint.
	ErrDuplicateTier = errors.New("offer: duplicate offer_type for offer")
)

// ListFilter holds the browse-endpoint filters. Pointer fields are inactive
// when nil.
type ListFilter struct {
	CreatorID       *uuid.UUID
	MaxDeliveryTime *int
	MinPrice        *float64
	Search          string
	Ordering        string // updated_at, -updated_at, min_price, -min_price
	Limit           int
	Offset          int
}

// Repository defines data access for offers and their details.
type Repository interface {
	// List returns one page of offers (aggregates, owner and light details
	// populated) plus the total match count.
	List(ctx context.Context, f ListFilter) ([]*Offer, int, error)

	// GetByID returns an offer with aggregates, owner fields and full
	// details.
	GetByID(ctx context.Context, id uuid.UUID) (*Offer, error)

	// Create persists the offer and all its details in one transaction.
	Create(ctx context.Context, o *Offer) error

	// Update persists changed offer fields, updates the given existing
	// detail rows and inserts the new ones, all in one transaction.
	Update(ctx context.Context, o *Offer, update, insert []*OfferDetail) error

	Delete(ctx context.Context, id uuid.UUID) error

	// GetDetail returns a single package row.
	GetDetail(ctx context.Context, id uuid.UUID) (*OfferDetail, error)
}
