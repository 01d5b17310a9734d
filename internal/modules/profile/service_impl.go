package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

type service struct {
	repo Repository
}

// NewService creates a new profile service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Profile, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" {
		return nil, apierror.Validation("Username is required.")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierror.Validation("A valid email is required.")
	}
	if req.Password == "" {
		return nil, apierror.Validation("Password is required.")
	}
	if req.Password != req.RepeatedPassword {
		return nil, apierror.Validation("Passwords do not match.")
	}
	role := policy.Role(req.Type)
	if !role.Valid() {
		return nil, apierror.Validation("Type must be either 'business' or 'customer'.")
	}

	if taken, err := s.repo.UsernameExists(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, apierror.Validation("This username already exists.")
	}
	if taken, err := s.repo.EmailExists(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, apierror.Validation("This email already exists.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	profile := &Profile{
		ID:     uuid.New(),
		UserID: user.ID,
		Type:   role,
		User:   user,
	}

	if err := s.repo.CreateUserWithProfile(ctx, user, profile); err != nil {
		// The pre-checks above race with concurrent registrations; the
		// unique constraints are the final word.
		switch {
		case errors.Is(err, ErrDuplicateUsername):
			return nil, apierror.Validation("This username already exists.")
		case errors.Is(err, ErrDuplicateEmail):
			return nil, apierror.Validation("This email already exists.")
		}
		return nil, err
	}
	return profile, nil
}

func (s *service) GetProfile(ctx context.Context, p policy.Principal, id string) (*Profile, error) {
	if err := policy.Check(p, policy.ResourceProfile, policy.VerbRead, policy.Ownership{}); err != nil {
		return nil, err
	}
	return s.loadProfile(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, p policy.Principal, id string, req UpdateRequest) (*Profile, error) {
	profile, err := s.loadProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	own := policy.Ownership{Owner: p.HasProfile() && p.ProfileID == profile.ID}
	if err := policy.Check(p, policy.ResourceProfile, policy.VerbUpdate, own); err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		profile.User.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.User.LastName = *req.LastName
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, apierror.Validation("A valid email is required.")
		}
		profile.User.Email = email
	}
	if req.File != nil {
		profile.File = *req.File
	}
	if req.Location != nil {
		profile.Location = *req.Location
	}
	if req.Tel != nil {
		profile.Tel = *req.Tel
	}
	if req.Description != nil {
		profile.Description = *req.Description
	}
	if req.WorkingHours != nil {
		profile.WorkingHours = *req.WorkingHours
	}

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *service) ListByType(ctx context.Context, p policy.Principal, role policy.Role) ([]*Profile, error) {
	if err := policy.Check(p, policy.ResourceProfile, policy.VerbList, policy.Ownership{}); err != nil {
		return nil, err
	}
	return s.repo.ListProfilesByType(ctx, role)
}

func (s *service) ResolvePrincipal(ctx context.Context, userID uuid.UUID) (policy.Principal, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return policy.Principal{}, apierror.Unauthorized("Invalid token.")
		}
		return policy.Principal{}, err
	}

	principal := policy.Principal{
		Authenticated: true,
		UserID:        user.ID,
		Staff:         user.IsStaff,
	}

	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return principal, nil
		}
		return policy.Principal{}, err
	}
	principal.ProfileID = profile.ID
	principal.Role = profile.Type
	return principal, nil
}

func (s *service) loadProfile(ctx context.Context, id string) (*Profile, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.NotFound("Profile not found.")
	}
	profile, err := s.repo.GetProfileByID(ctx, pid)
	if errors.Is(err, ErrNotFound) {
		return nil, apierror.NotFound("Profile not found.")
	}
	return profile, err
}
