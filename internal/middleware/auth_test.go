package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

type stubParser struct {
	userID uuid.UUID
	err    error
}

func (s *stubParser) ParseToken(token string) (uuid.UUID, error) {
	if s.err != nil {
		return uuid.Nil, s.err
	}
	return s.userID, nil
}

type stubResolver struct {
	principal policy.Principal
	err       error
}

func (s *stubResolver) ResolvePrincipal(ctx context.Context, userID uuid.UUID) (policy.Principal, error) {
	if s.err != nil {
		return policy.Principal{}, s.err
	}
	return s.principal, nil
}

func captureHandler(got *policy.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticatorNoHeaderIsAnonymous(t *testing.T) {
	a := NewAuthenticator(&stubParser{}, &stubResolver{}, testLogger())

	var got policy.Principal
	rec := httptest.NewRecorder()
	a.Handler(captureHandler(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, got.Authenticated)
}

func TestAuthenticatorRejectsMalformedHeader(t *testing.T) {
	a := NewAuthenticator(&stubParser{}, &stubResolver{}, testLogger())

	for _, header := range []string{"Token abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/offers", nil)
		req.Header.Set("Authorization", header)

		rec := httptest.NewRecorder()
		var got policy.Principal
		a.Handler(captureHandler(&got)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestAuthenticatorRejectsInvalidToken(t *testing.T) {
	parser := &stubParser{err: apierror.Unauthorized("Invalid or expired token.")}
	a := NewAuthenticator(parser, &stubResolver{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer bad-token")

	rec := httptest.NewRecorder()
	var got policy.Principal
	a.Handler(captureHandler(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatorResolvesPrincipal(t *testing.T) {
	userID := uuid.New()
	want := policy.Principal{
		Authenticated: true,
		UserID:        userID,
		ProfileID:     uuid.New(),
		Role:          policy.RoleCustomer,
	}
	a := NewAuthenticator(&stubParser{userID: userID}, &stubResolver{principal: want}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := httptest.NewRecorder()
	var got policy.Principal
	a.Handler(captureHandler(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, got)
}

func TestPrincipalFromEmptyContext(t *testing.T) {
	p := PrincipalFrom(context.Background())
	assert.False(t, p.Authenticated)
	assert.False(t, p.HasProfile())
}
