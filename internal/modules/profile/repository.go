package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

// ErrNotFound is returned when a user or profile row does not exist.
var ErrNotFound = errors.New("profile: not found")

// ErrDuplicateUsername and ErrDuplicateEmail are returned when the unique
// constraints on users catch a registration race.
var (
	ErrDuplicateUsername = errors.New("profile: username already taken")
	ErrDuplicateEmail    = errors.New("profile: email already taken")
)

// Repository defines data access for users and profiles.
type Repository interface {
	// CreateUserWithProfile persists a new user and its profile atomically.
	CreateUserWithProfile(ctx context.Context, u *User, p *Profile) error

	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	// GetProfileByID returns the profile with its user joined.
	GetProfileByID(ctx context.Context, id uuid.UUID) (*Profile, error)

	// GetProfileByUserID returns the profile owned by the given user, with
	// its user joined. ErrNotFound when the user has no profile.
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// ListProfilesByType returns all profiles of one role, users joined.
	ListProfilesByType(ctx context.Context, role policy.Role) ([]*Profile, error)

	// UpdateProfile persists profile contact fields and the joined user's
	// name/email in one transaction.
	UpdateProfile(ctx context.Context, p *Profile) error
}
