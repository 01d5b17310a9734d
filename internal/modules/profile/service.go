package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

// Service defines the interface for profile-related business logic.
type Service interface {
	// Register validates the registration payload and creates a user with
	// its profile.
	Register(ctx context.Context, req RegisterRequest) (*Profile, error)

	// GetProfile returns a profile by id for an authenticated principal.
	GetProfile(ctx context.Context, p policy.Principal, id string) (*Profile, error)

	// UpdateProfile applies a partial update; only the owner may update.
	UpdateProfile(ctx context.Context, p policy.Principal, id string, req UpdateRequest) (*Profile, error)

	// ListByType returns all profiles of one role.
	ListByType(ctx context.Context, p policy.Principal, role policy.Role) ([]*Profile, error)

	// ResolvePrincipal builds the request principal for a user id, profile
	// included when one exists.
	ResolvePrincipal(ctx context.Context, userID uuid.UUID) (policy.Principal, error)
}
