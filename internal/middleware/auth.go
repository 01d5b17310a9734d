// Package middleware provides the HTTP middleware chain: authentication,
// rate limiting, CORS, and request logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenParser validates a bearer token and returns the subject user id.
type TokenParser interface {
	ParseToken(token string) (uuid.UUID, error)
}

// PrincipalResolver builds the full principal for a user id.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID uuid.UUID) (policy.Principal, error)
}

// Authenticator resolves the request principal. Requests without an
// Authorization header proceed as anonymous; a present but invalid token is
// rejected outright.
type Authenticator struct {
	parser   TokenParser
	resolver PrincipalResolver
	logger   *logrus.Logger
}

// NewAuthenticator creates the authentication middleware.
func NewAuthenticator(parser TokenParser, resolver PrincipalResolver, logger *logrus.Logger) *Authenticator {
	return &Authenticator{parser: parser, resolver: resolver, logger: logger}
}

// Handler returns the middleware handler.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), policy.Anonymous())))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apierror.Write(w, apierror.Unauthorized("Invalid Authorization header format."))
			return
		}

		userID, err := a.parser.ParseToken(parts[1])
		if err != nil {
			a.logger.WithError(err).Warn("token validation failed")
			apierror.Write(w, err)
			return
		}

		principal, err := a.resolver.ResolvePrincipal(r.Context(), userID)
		if err != nil {
			apierror.Write(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

// WithPrincipal stores the principal on the context.
func WithPrincipal(ctx context.Context, p policy.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the request principal, anonymous when none was set.
func PrincipalFrom(ctx context.Context) policy.Principal {
	if p, ok := ctx.Value(principalKey).(policy.Principal); ok {
		return p
	}
	return policy.Anonymous()
}
