package offer

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreateRollsBackOnDuplicateTier(t *testing.T) {
	repo, mock := newMockDB(t)

	o := &Offer{
		ID:        uuid.New(),
		ProfileID: uuid.New(),
		Title:     "Logo design",
		Details: []*OfferDetail{
			{ID: uuid.New(), Title: "basic package", DeliveryTimeInDays: 5, Price: 50, Features: []string{}, OfferType: TypeBasic},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO offers").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO offer_details").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Create(context.Background(), o), ErrDuplicateTier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCommitsOfferAndDetails(t *testing.T) {
	repo, mock := newMockDB(t)

	o := &Offer{
		ID:        uuid.New(),
		ProfileID: uuid.New(),
		Title:     "Logo design",
		Details: []*OfferDetail{
			{ID: uuid.New(), Title: "basic package", DeliveryTimeInDays: 5, Price: 50, Features: []string{}, OfferType: TypeBasic},
			{ID: uuid.New(), Title: "premium package", DeliveryTimeInDays: 2, Price: 200, Features: []string{}, OfferType: TypePremium},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO offers").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO offer_details").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO offer_details").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), o))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDetailQuery(t *testing.T) {
	t.Run("decodes features json", func(t *testing.T) {
		repo, mock := newMockDB(t)

		id := uuid.New()
		now := time.Now()
		rows := sqlmock.NewRows([]string{
			"id", "offer_id", "title", "revisions", "delivery_time_in_days", "price", "features", "offer_type",
			"created_at", "updated_at",
		}).AddRow(id, uuid.New(), "basic package", 2, 5, 50.0, []byte(`["fast delivery"]`), "basic", now, now)

		mock.ExpectQuery("SELECT (.+) FROM offer_details WHERE id=").
			WithArgs(id).
			WillReturnRows(rows)

		got, err := repo.GetDetail(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, []string{"fast delivery"}, got.Features)
		assert.Equal(t, TypeBasic, got.OfferType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newMockDB(t)

		id := uuid.New()
		mock.ExpectQuery("SELECT (.+) FROM offer_details WHERE id=").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetDetail(context.Background(), id)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "o.updated_at DESC", orderClause("-updated_at"))
	assert.Equal(t, "MIN(d.price) ASC NULLS LAST", orderClause("min_price"))
	assert.Equal(t, "MIN(d.price) DESC NULLS LAST", orderClause("-min_price"))
	assert.Equal(t, "o.updated_at ASC", orderClause(""))
	assert.Equal(t, "o.updated_at ASC", orderClause("surprise"))
}
