package profile

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

func newMockDB(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func registrationPair() (*User, *Profile) {
	u := &User{ID: uuid.New(), Username: "anna", Email: "anna@example.com", PasswordHash: "hash"}
	p := &Profile{ID: uuid.New(), UserID: u.ID, Type: policy.RoleCustomer}
	return u, p
}

func TestCreateUserWithProfileMapsUniqueViolations(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{"email constraint", "users_email_key", ErrDuplicateEmail},
		{"username constraint", "users_username_key", ErrDuplicateUsername},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock := newMockDB(t)

			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO users").
				WillReturnError(&pq.Error{Code: "23505", Constraint: tc.constraint})
			mock.ExpectRollback()

			u, p := registrationPair()
			err := repo.CreateUserWithProfile(context.Background(), u, p)
			assert.ErrorIs(t, err, tc.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateUserWithProfileCommits(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO profiles").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, p := registrationPair()
	require.NoError(t, repo.CreateUserWithProfile(context.Background(), u, p))
	assert.NoError(t, mock.ExpectationsWereMet())
}
