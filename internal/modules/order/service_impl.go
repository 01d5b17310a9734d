package order

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

// NewService creates a new order service.
func NewService(repo Repository, profiles profile.Repository) Service {
	return &service{repo: repo, profiles: profiles}
}

func (s *service) Create(ctx context.Context, p policy.Principal, req CreateRequest) (*Order, error) {
	if err := policy.Check(p, policy.ResourceOrder, policy.VerbCreate, policy.Ownership{}); err != nil {
		return nil, err
	}

	detailID, err := uuid.Parse(req.OfferDetailID)
	if err != nil {
		return nil, apierror.NotFound("OfferDetail not found.")
	}
	exists, err := s.repo.OfferDetailExists(ctx, detailID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apierror.NotFound("OfferDetail not found.")
	}

	o := &Order{
		ID:                uuid.New(),
		CustomerProfileID: p.ProfileID,
		OfferDetailID:     detailID,
		Status:            StatusInProgress,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, o.ID)
}

func (s *service) List(ctx context.Context, p policy.Principal) ([]*Order, error) {
	if err := policy.Check(p, policy.ResourceOrder, policy.VerbList, policy.Ownership{}); err != nil {
		return nil, err
	}

	switch p.Role {
	case policy.RoleCustomer:
		return s.repo.ListByCustomer(ctx, p.ProfileID)
	case policy.RoleBusiness:
		return s.repo.ListByBusiness(ctx, p.ProfileID)
	default:
		return nil, nil
	}
}

func (s *service) Get(ctx context.Context, p policy.Principal, id string) (*Order, error) {
	o, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(p, policy.ResourceOrder, policy.VerbRead, s.ownership(p, o)); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, p policy.Principal, id string, req UpdateStatusRequest) (*Order, error) {
	o, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(p, policy.ResourceOrder, policy.VerbUpdate, s.ownership(p, o)); err != nil {
		return nil, err
	}

	status := Status(req.Status)
	if !status.Valid() {
		return nil, apierror.Validationf("Invalid status %q.", req.Status)
	}

	if err := s.repo.UpdateStatus(ctx, o.ID, status); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, o.ID)
}

func (s *service) Delete(ctx context.Context, p policy.Principal, id string) error {
	o, err := s.loadOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Check(p, policy.ResourceOrder, policy.VerbDelete, s.ownership(p, o)); err != nil {
		return err
	}
	return s.repo.Delete(ctx, o.ID)
}

func (s *service) CountInProgress(ctx context.Context, p policy.Principal, businessID string) (int, error) {
	return s.countByStatus(ctx, p, businessID, StatusInProgress)
}

func (s *service) CountCompleted(ctx context.Context, p policy.Principal, businessID string) (int, error) {
	return s.countByStatus(ctx, p, businessID, StatusCompleted)
}

func (s *service) countByStatus(ctx context.Context, p policy.Principal, businessID string, status Status) (int, error) {
	if err := policy.Check(p, policy.ResourceProfile, policy.VerbRead, policy.Ownership{}); err != nil {
		return 0, err
	}

	pid, err := uuid.Parse(businessID)
	if err != nil {
		return 0, apierror.NotFound("This id does not exist.")
	}
	prof, err := s.profiles.GetProfileByID(ctx, pid)
	if errors.Is(err, profile.ErrNotFound) {
		return 0, apierror.NotFound("This id does not exist.")
	}
	if err != nil {
		return 0, err
	}
	if prof.Type != policy.RoleBusiness {
		return 0, apierror.NotFound("This id does not exist.")
	}

	return s.repo.CountByBusinessStatus(ctx, pid, status)
}

func (s *service) loadOrder(ctx context.Context, id string) (*Order, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.NotFound("Order not found.")
	}
	o, err := s.repo.GetByID(ctx, oid)
	if errors.Is(err, ErrNotFound) {
		return nil, apierror.NotFound("Order not found.")
	}
	return o, err
}

func (s *service) ownership(p policy.Principal, o *Order) policy.Ownership {
	if !p.HasProfile() {
		return policy.Ownership{}
	}
	return policy.Ownership{
		Owner: p.ProfileID == o.BusinessProfileID,
		Party: p.ProfileID == o.CustomerProfileID || p.ProfileID == o.BusinessProfileID,
	}
}
