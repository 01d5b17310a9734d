package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a review row does not exist.
	ErrNotFound = errors.New("review: not found")

	// ErrDuplicate is returned when an insert collides with the
	// (business, reviewer) uniqueness constraint.
	ErrDuplicate = errors.New("review: duplicate review for business")
)

// ListFilter holds the review list filters. Pointer fields are inactive when
// nil.
type ListFilter struct {
	BusinessProfileID *uuid.UUID
	ReviewerProfileID *uuid.UUID
	Ordering          string // updated_at, -updated_at, rating, -rating
}

// Repository defines data access for reviews.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	List(ctx context.Context, f ListFilter) ([]*Review, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsForPair reports whether the reviewer already reviewed the
	// business.
	ExistsForPair(ctx context.Context, businessID, reviewerID uuid.UUID) (bool, error)
}
