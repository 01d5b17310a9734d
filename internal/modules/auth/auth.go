package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/serviceyard/serviceyard-backend/internal/modules/profile"
)

// Credentials is the payload returned after registration and login.
type Credentials struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	UserID   uuid.UUID `json:"user_id"`
}

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Register creates an account via the profile service and issues a token.
	Register(ctx context.Context, req profile.RegisterRequest) (*Credentials, error)

	// Login verifies credentials and issues a token.
	Login(ctx context.Context, username, password string) (*Credentials, error)

	// ParseToken validates a bearer token and returns the subject user id.
	ParseToken(token string) (uuid.UUID, error)
}
