package offer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

type service struct {
	repo Repository
}

// NewService creates a new offer service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, f ListFilter) ([]*Offer, int, error) {
	return s.repo.List(ctx, f)
}

func (s *service) Create(ctx context.Context, p policy.Principal, req CreateRequest) (*Offer, error) {
	if err := policy.Check(p, policy.ResourceOffer, policy.VerbCreate, policy.Ownership{}); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, apierror.Validation("Title is required.")
	}
	if len(req.Details) == 0 {
		return nil, apierror.Validation("An offer requires at least one detail.")
	}

	offer := &Offer{
		ID:          uuid.New(),
		ProfileID:   p.ProfileID,
		Title:       req.Title,
		Image:       req.Image,
		Description: req.Description,
	}

	seen := map[DetailType]bool{}
	for _, payload := range req.Details {
		detail, err := buildDetail(payload)
		if err != nil {
			return nil, err
		}
		if seen[detail.OfferType] {
			return nil, apierror.Validationf("Duplicate offer_type %q in details.", detail.OfferType)
		}
		seen[detail.OfferType] = true
		offer.Details = append(offer.Details, detail)
	}

	if err := s.repo.Create(ctx, offer); err != nil {
		if errors.Is(err, ErrDuplicateTier) {
			return nil, apierror.Validation("Create Detail failed.")
		}
		return nil, err
	}
	return s.repo.GetByID(ctx, offer.ID)
}

func (s *service) Get(ctx context.Context, p policy.Principal, id string) (*Offer, error) {
	if err := policy.Check(p, policy.ResourceOffer, policy.VerbRead, policy.Ownership{}); err != nil {
		return nil, err
	}
	return s.loadOffer(ctx, id)
}

func (s *service) Update(ctx context.Context, p policy.Principal, id string, req UpdateRequest) (*Offer, error) {
	offer, err := s.loadOffer(ctx, id)
	if err != nil {
		return nil, err
	}

	own := policy.Ownership{Owner: p.HasProfile() && p.ProfileID == offer.ProfileID}
	if err := policy.Check(p, policy.ResourceOffer, policy.VerbUpdate, own); err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apierror.Validation("Title must not be empty.")
		}
		offer.Title = *req.Title
	}
	if req.Image != nil {
		offer.Image = *req.Image
	}
	if req.Description != nil {
		offer.Description = *req.Description
	}

	// Submitted details are matched to existing rows by offer_type: a match
	// updates that row in place, anything else becomes a new row. A changed
	// tier value therefore creates an additional package, it never renames.
	existing := map[DetailType]*OfferDetail{}
	for _, d := range offer.Details {
		existing[d.OfferType] = d
	}

	var update, insert []*OfferDetail
	for _, payload := range req.Details {
		tier := DetailType(payload.OfferType)
		if !tier.Valid() {
			return nil, apierror.Validationf("Invalid offer_type %q.", payload.OfferType)
		}

		if current, ok := existing[tier]; ok {
			if err := applyDetail(current, payload); err != nil {
				return nil, err
			}
			update = append(update, current)
			continue
		}

		detail, err := buildDetail(payload)
		if err != nil {
			return nil, err
		}
		insert = append(insert, detail)
	}

	if err := s.repo.Update(ctx, offer, update, insert); err != nil {
		if errors.Is(err, ErrDuplicateTier) {
			return nil, apierror.Validation("Create Detail failed.")
		}
		return nil, err
	}
	return s.repo.GetByID(ctx, offer.ID)
}

func (s *service) Delete(ctx context.Context, p policy.Principal, id string) error {
	offer, err := s.loadOffer(ctx, id)
	if err != nil {
		return err
	}

	own := policy.Ownership{Owner: p.HasProfile() && p.ProfileID == offer.ProfileID}
	if err := policy.Check(p, policy.ResourceOffer, policy.VerbDelete, own); err != nil {
		return err
	}
	return s.repo.Delete(ctx, offer.ID)
}

func (s *service) GetDetail(ctx context.Context, p policy.Principal, id string) (*OfferDetail, error) {
	if err := policy.Check(p, policy.ResourceOfferDetail, policy.VerbRead, policy.Ownership{}); err != nil {
		return nil, err
	}

	did, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.NotFound("OfferDetail not found.")
	}
	detail, err := s.repo.GetDetail(ctx, did)
	if errors.Is(err, ErrNotFound) {
		return nil, apierror.NotFound("OfferDetail not found.")
	}
	return detail, err
}

func (s *service) loadOffer(ctx context.Context, id string) (*Offer, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.NotFound("Offer not found.")
	}
	offer, err := s.repo.GetByID(ctx, oid)
	if errors.Is(err, ErrNotFound) {
		return nil, apierror.NotFound("Offer not found.")
	}
	return offer, err
}

// buildDetail validates a fully-specified detail payload and produces a new
// row.
func buildDetail(payload DetailPayload) (*OfferDetail, error) {
	tier := DetailType(payload.OfferType)
	if !tier.Valid() {
		return nil, apierror.Validationf("Invalid offer_type %q.", payload.OfferType)
	}
	if payload.Title == nil || strings.TrimSpace(*payload.Title) == "" {
		return nil, apierror.Validationf("Detail %q requires a title.", tier)
	}
	if payload.Revisions == nil {
		return nil, apierror.Validationf("Detail %q requires revisions.", tier)
	}
	if payload.DeliveryTimeInDays == nil {
		return nil, apierror.Validationf("Detail %q requires delivery_time_in_days.", tier)
	}
	if payload.Price == nil {
		return nil, apierror.Validationf("Detail %q requires a price.", tier)
	}

	d := &OfferDetail{
		ID:                 uuid.New(),
		Title:              *payload.Title,
		Revisions:          *payload.Revisions,
		DeliveryTimeInDays: *payload.DeliveryTimeInDays,
		Price:              *payload.Price,
		Features:           payload.Features,
		OfferType:          tier,
	}
	if d.Features == nil {
		d.Features = []string{}
	}
	return d, validateDetail(d)
}

// applyDetail overwrites the fields present in a partial payload.
func applyDetail(d *OfferDetail, payload DetailPayload) error {
	if payload.Title != nil {
		d.Title = *payload.Title
	}
	if payload.Revisions != nil {
		d.Revisions = *payload.Revisions
	}
	if payload.DeliveryTimeInDays != nil {
		d.DeliveryTimeInDays = *payload.DeliveryTimeInDays
	}
	if payload.Price != nil {
		d.Price = *payload.Price
	}
	if payload.Features != nil {
		d.Features = payload.Features
	}
	return validateDetail(d)
}

func validateDetail(d *OfferDetail) error {
	if d.Price < 0 {
		return apierror.Validationf("Detail %q price must not be negative.", d.OfferType)
	}
	if d.DeliveryTimeInDays < 1 {
		return apierror.Validationf("Detail %q delivery_time_in_days must be at least 1.", d.OfferType)
	}
	if d.Revisions < -1 {
		return apierror.Validationf("Detail %q revisions must be -1 or greater.", d.OfferType)
	}
	return nil
}
