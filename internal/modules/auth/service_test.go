package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/modules/profile"
	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

type mockUserRepo struct {
	users    map[uuid.UUID]*profile.User
	profiles map[uuid.UUID]*profile.Profile
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:    make(map[uuid.UUID]*profile.User),
		profiles: make(map[uuid.UUID]*profile.Profile),
	}
}

func (m *mockUserRepo) CreateUserWithProfile(ctx context.Context, u *profile.User, p *profile.Profile) error {
	m.users[u.ID] = u
	m.profiles[p.ID] = p
	return nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*profile.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*profile.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, profile.ErrNotFound
}

func (m *mockUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetUserByUsername(ctx, username)
	return err == nil, nil
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) GetProfileByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p, nil
}

func (m *mockUserRepo) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	for _, p := range m.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, profile.ErrNotFound
}

func (m *mockUserRepo) ListProfilesByType(ctx context.Context, role policy.Role) ([]*profile.Profile, error) {
	return nil, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, p *profile.Profile) error {
	return nil
}

func setup(t *testing.T) (Service, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	profiles := profile.NewService(repo)
	return NewService(profiles, repo, "test-secret", time.Hour), repo
}

func registration() profile.RegisterRequest {
	return profile.RegisterRequest{
		Username:         "vendor",
		Email:            "vendor@example.com",
		Password:         "pass-word-1",
		RepeatedPassword: "pass-word-1",
		Type:             "business",
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, repo := setup(t)

	creds, err := svc.Register(context.Background(), registration())
	require.NoError(t, err)
	assert.NotEmpty(t, creds.Token)
	assert.Equal(t, "vendor", creds.Username)
	assert.Equal(t, "vendor@example.com", creds.Email)

	// The user_id in the payload is the profile id, not the account id.
	p, err := repo.GetProfileByID(context.Background(), creds.UserID)
	require.NoError(t, err)

	// The token subject is the account id and round-trips through ParseToken.
	sub, err := svc.ParseToken(creds.Token)
	require.NoError(t, err)
	assert.Equal(t, p.UserID, sub)
}

func TestRegisterPropagatesValidation(t *testing.T) {
	svc, _ := setup(t)
	req := registration()
	req.RepeatedPassword = "nope"

	_, err := svc.Register(context.Background(), req)
	assert.Equal(t, apierror.KindValidation, apierror.From(err).Kind)
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		svc, _ := setup(t)
		registered, err := svc.Register(context.Background(), registration())
		require.NoError(t, err)

		creds, err := svc.Login(context.Background(), "vendor", "pass-word-1")
		require.NoError(t, err)
		assert.NotEmpty(t, creds.Token)
		assert.Equal(t, registered.UserID, creds.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.Register(context.Background(), registration())
		require.NoError(t, err)

		_, err = svc.Login(context.Background(), "vendor", "wrong")
		apiErr := apierror.From(err)
		assert.Equal(t, apierror.KindValidation, apiErr.Kind)
		assert.Equal(t, "Unable to log in with provided credentials.", apiErr.Message)
	})

	t.Run("unknown username gets the same message", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.Login(context.Background(), "ghost", "whatever")
		apiErr := apierror.From(err)
		assert.Equal(t, apierror.KindValidation, apiErr.Kind)
		assert.Equal(t, "Unable to log in with provided credentials.", apiErr.Message)
	})

	t.Run("profile-less account still logs in", func(t *testing.T) {
		svc, repo := setup(t)
		hash, err := bcrypt.GenerateFromPassword([]byte("pw-123456"), bcrypt.DefaultCost)
		require.NoError(t, err)
		u := &profile.User{ID: uuid.New(), Username: "bare", Email: "bare@example.com", PasswordHash: string(hash)}
		repo.users[u.ID] = u

		creds, err := svc.Login(context.Background(), "bare", "pw-123456")
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, creds.UserID)
	})
}

func TestParseToken(t *testing.T) {
	svc, _ := setup(t)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ParseToken("not-a-jwt")
		assert.Equal(t, apierror.KindUnauthorized, apierror.From(err).Kind)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		repo := newMockUserRepo()
		other := NewService(profile.NewService(repo), repo, "other-secret", time.Hour)
		creds, err := other.Register(context.Background(), registration())
		require.NoError(t, err)

		_, err = svc.ParseToken(creds.Token)
		assert.Equal(t, apierror.KindUnauthorized, apierror.From(err).Kind)
	})

	t.Run("expired token", func(t *testing.T) {
		repo := newMockUserRepo()
		expired := NewService(profile.NewService(repo), repo, "test-secret", -time.Minute)
		creds, err := expired.Register(context.Background(), registration())
		require.NoError(t, err)

		_, err = svc.ParseToken(creds.Token)
		assert.Equal(t, apierror.KindUnauthorized, apierror.From(err).Kind)
	})
}
