package review

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/modules/profile"
	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

type service struct {
	repo     Repository
	profiles profile.Repository
}

// NewService creates a new review service.
func NewService(repo Repository, profiles profile.Repository) Service {
	return &service{repo: repo, profiles: profiles}
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*Review, error) {
	return s.repo.List(ctx, f)
}

func (s *service) Create(ctx context.Context, p policy.Principal, req CreateRequest) (*Review, error) {
	if err := policy.Check(p, policy.ResourceReview, policy.VerbCreate, policy.Ownership{}); err != nil {
		return nil, err
	}

	if req.Rating < 1 || req.Rating > 5 {
		return nil, apierror.Validation("Rating must be between 1 and 5.")
	}

	businessID, err := uuid.Parse(req.BusinessUser)
	if err != nil {
		return nil, apierror.NotFound("Business profile not found.")
	}
	prof, err := s.profiles.GetProfileByID(ctx, businessID)
	if errors.Is(err, profile.ErrNotFound) {
		return nil, apierror.NotFound("Business profile not found.")
	}
	if err != nil {
		return nil, err
	}
	if prof.Type != policy.RoleBusiness {
		return nil, apierror.NotFound("Business profile not found.")
	}

	// Check-then-insert; the unique index closes the remaining race.
	exists, err := s.repo.ExistsForPair(ctx, businessID, p.ProfileID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apierror.Validation("You have already submitted a review for this business user.")
	}

	rev := &Review{
		ID:                uuid.New(),
		BusinessProfileID: businessID,
		ReviewerProfileID: p.ProfileID,
		Rating:            req.Rating,
		Description:       req.Description,
	}
	if err := s.repo.Create(ctx, rev); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apierror.Validation("You have already submitted a review for this business user.")
		}
		return nil, err
	}
	return s.repo.GetByID(ctx, rev.ID)
}

func (s *service) Get(ctx context.Context, id string) (*Review, error) {
	return s.loadReview(ctx, id)
}

func (s *service) Update(ctx context.Context, p policy.Principal, id string, req UpdateRequest) (*Review, error) {
	rev, err := s.loadReview(ctx, id)
	if err != nil {
		return nil, err
	}

	own := policy.Ownership{Owner: p.HasProfile() && p.ProfileID == rev.ReviewerProfileID}
	if err := policy.Check(p, policy.ResourceReview, policy.VerbUpdate, own); err != nil {
		return nil, err
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, apierror.Validation("Rating must be between 1 and 5.")
		}
		rev.Rating = *req.Rating
	}
	if req.Description != nil {
		rev.Description = *req.Description
	}

	if err := s.repo.Update(ctx, rev); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, rev.ID)
}

func (s *service) Delete(ctx context.Context, p policy.Principal, id string) error {
	rev, err := s.loadReview(ctx, id)
	if err != nil {
		return err
	}

	own := policy.Ownership{Owner: p.HasProfile() && p.ProfileID == rev.ReviewerProfileID}
	if err := policy.Check(p, policy.ResourceReview, policy.VerbDelete, own); err != nil {
		return err
	}
	return s.repo.Delete(ctx, rev.ID)
}

func (s *service) loadReview(ctx context.Context, id string) (*Review, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.NotFound("Review not found.")
	}
	rev, err := s.repo.GetByID(ctx, rid)
	if errors.Is(err, ErrNotFound) {
		return nil, apierror.NotFound("Review not found.")
	}
	return rev, err
}
