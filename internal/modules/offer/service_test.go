package offer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

type mockRepo struct {
	offers map[uuid.UUID]*Offer

	lastUpdate []*OfferDetail
	lastInsert []*OfferDetail
}

func newMockRepo() *mockRepo {
	return &mockRepo{offers: make(map[uuid.UUID]*Offer)}
}

func (m *mockRepo) List(ctx context.Context, f ListFilter) ([]*Offer, int, error) {
	var out []*Offer
	for _, o := range m.offers {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Offer, error) {
	o, ok := m.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockRepo) Create(ctx context.Context, o *Offer) error {
	for _, d := range o.Details {
		d.OfferID = o.ID
	}
	m.offers[o.ID] = o
	return nil
}

func (m *mockRepo) Update(ctx context.Context, o *Offer, update, insert []*OfferDetail) error {
	m.lastUpdate = update
	m.lastInsert = insert
	for _, d := range insert {
		d.OfferID = o.ID
		o.Details = append(o.Details, d)
	}
	m.offers[o.ID] = o
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.offers[id]; !ok {
		return ErrNotFound
	}
	delete(m.offers, id)
	return nil
}

func (m *mockRepo) GetDetail(ctx context.Context, id uuid.UUID) (*OfferDetail, error) {
	for _, o := range m.offers {
		for _, d := range o.Details {
			if d.ID == id {
				return d, nil
			}
		}
	}
	return nil, ErrNotFound
}

func businessPrincipal() policy.Principal {
	return policy.Principal{
		Authenticated: true,
		UserID:        uuid.New(),
		ProfileID:     uuid.New(),
		Role:          policy.RoleBusiness,
	}
}

func customerPrincipal() policy.Principal {
	return policy.Principal{
		Authenticated: true,
		UserID:        uuid.New(),
		ProfileID:     uuid.New(),
		Role:          policy.RoleCustomer,
	}
}

func detailPayload(tier string, price float64) DetailPayload {
	title := tier + " package"
	revisions := 2
	delivery := 5
	return DetailPayload{
		Title:              &title,
		Revisions:          &revisions,
		DeliveryTimeInDays: &delivery,
		Price:              &price,
		Features:           []string{"feature one"},
		OfferType:          tier,
	}
}

func createRequest() CreateRequest {
	return CreateRequest{
		Title:       "Logo design",
		Description: "Three concepts, vector files included.",
		Details: []DetailPayload{
			detailPayload("basic", 50),
			detailPayload("standard", 120),
			detailPayload("premium", 300),
		},
	}
}

func TestCreate(t *testing.T) {
	t.Run("business creates offer with packages", func(t *testing.T) {
		repo := newMockRepo()
		svc := NewService(repo)
		p := businessPrincipal()

		got, err := svc.Create(context.Background(), p, createRequest())
		require.NoError(t, err)
		assert.Equal(t, p.ProfileID, got.ProfileID)
		require.Len(t, got.Details, 3)
		assert.Equal(t, got.ID, got.Details[0].OfferID)
		assert.Equal(t, []string{"feature one"}, got.Details[0].Features)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		svc := NewService(newMockRepo())
		_, err := svc.Create(context.Background(), customerPrincipal(), createRequest())
		assert.Equal(t, apierror.KindForbidden, apierror.From(err).Kind)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		svc := NewService(newMockRepo())
		_, err := svc.Create(context.Background(), policy.Anonymous(), createRequest())
		assert.Equal(t, apierror.KindUnauthorized, apierror.From(err).Kind)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		svc := NewService(newMockRepo())
		req := createRequest()
		req.Title = "   "
		_, err := svc.Create(context.Background(), businessPrincipal(), req)
		assert.Equal(t, apierror.KindValidation, apierror.From(err).Kind)
	})

	t.Run("rejects missing details", func(t *testing.T) {
		svc := NewService(newMockRepo())
		req := createRequest()
		req.Details = nil
		_, err := svc.Create(context.Background(), businessPrincipal(), req)
		assert.Equal(t, apierror.KindValidation, apierror.From(err).Kind)
	})

	t.Run("rejects duplicate tier in payload", func(t *testing.T) {
		svc := NewService(newMockRepo())
		req := createRequest()
		req.Details = []DetailPayload{detailPayload("basic", 50), detailPayload("basic", 80)}
		_, err := svc.Create(context.Background(), businessPrincipal(), req)
		assert.Equal(t, apierror.KindValidation, apierror.From(err).Kind)
	})

	t.Run("rejects unknown tier", func(t *testing.T) {
		svc := NewService(newMockRepo())
		req := createRequest()
		req.Details = []DetailPayload{detailPayload("deluxe", 50)}
		_, err := svc.Create(context.Background(), businessPrincipal(), req)
		assert.Equal(t, apierror.KindValidation, apierror.From(err).Kind)
	})

	t.Run("rejects incomplete detail", func(t *testing.T) {
		svc := NewService(newMockRepo())
		req := createRequest()
		req.Details = []DetailPayload{{OfferType: "basic"}}
		_, err := svc.Create(context.Background(), businessPrincipal(), req)
		assert.Equal(t, apierror.KindValidation, apierror.From(err).Kind)
	})

	t.Run("rejects out-of-range values", func(t *testing.T) {
		svc := NewService(newMockRepo())

		bad := detailPayload("basic", -1)
		req := createRequest()
		req.Details = []DetailPayload{bad}
		_, err := svc.Create(context.Background(), businessPrincipal(), req)
		assert.Equal(t, apierror.KindValidation, apierror.From(err).Kind)

		bad = detailPayload("basic", 10)
		zero := 0
		bad.DeliveryTimeInDays = &zero
		req.Details = []DetailPayload{bad}
		_, err = svc.Create(context.Background(), businessPrincipal(), req)
		assert.Equal(t, apierror.KindValidation, apierror.From(err).Kind)

		bad = detailPayload("basic", 10)
		revisions := -2
		bad.Revisions = &revisions
		req.Details = []DetailPayload{bad}
		_, err = svc.Create(context.Background(), businessPrincipal(), req)
		assert.Equal(t, apierror.KindValidation, apierror.From(err).Kind)
	})

	t.Run("unlimited revisions are allowed", func(t *testing.T) {
		svc := NewService(newMockRepo())
		payload := detailPayload("basic", 10)
		unlimited := -1
		payload.Revisions = &unlimited
		req := createRequest()
		req.Details = []DetailPayload{payload}

		got, err := svc.Create(context.Background(), businessPrincipal(), req)
		require.NoError(t, err)
		assert.Equal(t, -1, got.Details[0].Revisions)
	})
}

func TestGet(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	owner := businessPrincipal()
	created, err := svc.Create(context.Background(), owner, createRequest())
	require.NoError(t, err)

	t.Run("anonymous can read a single offer", func(t *testing.T) {
		got, err := svc.Get(context.Background(), policy.Anonymous(), created.ID.String())
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := svc.Get(context.Background(), policy.Anonymous(), uuid.NewString())
		assert.Equal(t, apierror.KindNotFound, apierror.From(err).Kind)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		_, err := svc.Get(context.Background(), policy.Anonymous(), "42")
		assert.Equal(t, apierror.KindNotFound, apierror.From(err).Kind)
	})
}

func TestUpdate(t *testing.T) {
	setup := func(t *testing.T) (*mockRepo, Service, policy.Principal, *Offer) {
		t.Helper()
		repo := newMockRepo()
		svc := NewService(repo)
		owner := businessPrincipal()
		created, err := svc.Create(context.Background(), owner, createRequest())
		require.NoError(t, err)
		return repo, svc, owner, created
	}

	t.Run("matching tier updates the row in place", func(t *testing.T) {
		repo, svc, owner, created := setup(t)
		basicID := created.Details[0].ID

		price := 75.0
		got, err := svc.Update(context.Background(), owner, created.ID.String(), UpdateRequest{
			Details: []DetailPayload{{OfferType: "basic", Price: &price}},
		})
		require.NoError(t, err)

		require.Len(t, repo.lastUpdate, 1)
		assert.Empty(t, repo.lastInsert)
		// Same row id: the package was repriced, not replaced.
		assert.Equal(t, basicID, repo.lastUpdate[0].ID)
		assert.Equal(t, 75.0, repo.lastUpdate[0].Price)
		// Untouched fields survive the partial payload.
		assert.Equal(t, "basic package", repo.lastUpdate[0].Title)
		assert.Len(t, got.Details, 3)
	})

	t.Run("new tier becomes a new row", func(t *testing.T) {
		repo := newMockRepo()
		svc := NewService(repo)
		owner := businessPrincipal()
		req := createRequest()
		req.Details = []DetailPayload{detailPayload("basic", 50)}
		created, err := svc.Create(context.Background(), owner, req)
		require.NoError(t, err)

		got, err := svc.Update(context.Background(), owner, created.ID.String(), UpdateRequest{
			Details: []DetailPayload{detailPayload("premium", 400)},
		})
		require.NoError(t, err)
		require.Len(t, repo.lastInsert, 1)
		assert.Equal(t, TypePremium, repo.lastInsert[0].OfferType)
		assert.Len(t, got.Details, 2)
	})

	t.Run("new tier requires the full payload", func(t *testing.T) {
		repo := newMockRepo()
		svc := NewService(repo)
		owner := businessPrincipal()
		req := createRequest()
		req.Details = []DetailPayload{detailPayload("basic", 50)}
		created, err := svc.Create(context.Background(), owner, req)
		require.NoError(t, err)

		price := 400.0
		_, err = svc.Update(context.Background(), owner, created.ID.String(), UpdateRequest{
			Details: []DetailPayload{{OfferType: "premium", Price: &price}},
		})
		assert.Equal(t, apierror.KindValidation, apierror.From(err).Kind)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		_, svc, _, created := setup(t)
		title := "Hijacked"
		_, err := svc.Update(context.Background(), businessPrincipal(), created.ID.String(), UpdateRequest{Title: &title})
		assert.Equal(t, apierror.KindForbidden, apierror.From(err).Kind)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		_, svc, _, created := setup(t)
		title := "Hijacked"
		_, err := svc.Update(context.Background(), policy.Anonymous(), created.ID.String(), UpdateRequest{Title: &title})
		assert.Equal(t, apierror.KindUnauthorized, apierror.From(err).Kind)
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		_, svc, owner, created := setup(t)
		title := "  "
		_, err := svc.Update(context.Background(), owner, created.ID.String(), UpdateRequest{Title: &title})
		assert.Equal(t, apierror.KindValidation, apierror.From(err).Kind)
	})
}

func TestDelete(t *testing.T) {
	t.Run("owner deletes", func(t *testing.T) {
		repo := newMockRepo()
		svc := NewService(repo)
		owner := businessPrincipal()
		created, err := svc.Create(context.Background(), owner, createRequest())
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), owner, created.ID.String()))
		assert.Empty(t, repo.offers)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		repo := newMockRepo()
		svc := NewService(repo)
		created, err := svc.Create(context.Background(), businessPrincipal(), createRequest())
		require.NoError(t, err)

		err = svc.Delete(context.Background(), businessPrincipal(), created.ID.String())
		assert.Equal(t, apierror.KindForbidden, apierror.From(err).Kind)
		assert.Len(t, repo.offers, 1)
	})
}

func TestGetDetail(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), businessPrincipal(), createRequest())
	require.NoError(t, err)
	detailID := created.Details[0].ID

	t.Run("authenticated caller reads a package", func(t *testing.T) {
		got, err := svc.GetDetail(context.Background(), customerPrincipal(), detailID.String())
		require.NoError(t, err)
		assert.Equal(t, detailID, got.ID)
	})

	t.Run("anonymous gets 401, not 404", func(t *testing.T) {
		_, err := svc.GetDetail(context.Background(), policy.Anonymous(), detailID.String())
		assert.Equal(t, apierror.KindUnauthorized, apierror.From(err).Kind)

		_, err = svc.GetDetail(context.Background(), policy.Anonymous(), uuid.NewString())
		assert.Equal(t, apierror.KindUnauthorized, apierror.From(err).Kind)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := svc.GetDetail(context.Background(), customerPrincipal(), uuid.NewString())
		assert.Equal(t, apierror.KindNotFound, apierror.From(err).Kind)
	})
}

func TestResponses(t *testing.T) {
	created := &Offer{
		ID:        uuid.New(),
		ProfileID: uuid.New(),
		Title:     "Logo design",
		Details: []*OfferDetail{
			{ID: uuid.New(), Title: "basic package", Price: 50, OfferType: TypeBasic},
		},
		OwnerUsername: "vendor",
	}

	t.Run("light shape carries refs only", func(t *testing.T) {
		resp := NewLightResponse(created)
		refs, ok := resp.Details.([]DetailRef)
		require.True(t, ok)
		require.Len(t, refs, 1)
		assert.Equal(t, created.Details[0].ID, refs[0].ID)
		assert.Equal(t, "/offer-details/"+created.Details[0].ID.String(), refs[0].URL)
	})

	t.Run("write shape carries full packages", func(t *testing.T) {
		resp := NewWriteResponse(created)
		details, ok := resp.Details.([]DetailResponse)
		require.True(t, ok)
		require.Len(t, details, 1)
		assert.Equal(t, 50.0, details[0].Price)
		assert.NotNil(t, details[0].Features)
	})
}
