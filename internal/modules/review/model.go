package review

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer's one-time rating of a business profile. At most one
// review may exist per (business, reviewer) pair.
type Review struct {
	ID                uuid.UUID `json:"id"`
	BusinessProfileID uuid.UUID `json:"business_user"`
	ReviewerProfileID uuid.UUID `json:"reviewer"`
	Rating            int       `json:"rating"`
	Description       string    `json:"description"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateRequest is the payload for posting a review.
type CreateRequest struct {
	BusinessUser string `json:"business_user"`
	Rating       int    `json:"rating"`
	Description  string `json:"description"`
}

// UpdateRequest is the partial-update payload for a review.
type UpdateRequest struct {
	Rating      *int    `json:"rating"`
	Description *string `json:"description"`
}
