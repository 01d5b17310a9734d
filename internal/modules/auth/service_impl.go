package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
	"github.com/serviceyard/serviceyard-backend/internal/modules/profile"
)

type service struct {
	profiles profile.Service
	users    profile.Repository
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates a new auth service.
func NewService(profiles profile.Service, users profile.Repository, secret string, tokenTTL time.Duration) Service {
	return &service{
		profiles: profiles,
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (s *service) Register(ctx context.Context, req profile.RegisterRequest) (*Credentials, error) {
	p, err := s.profiles.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(p.UserID)
	if err != nil {
		return nil, err
	}

	return &Credentials{
		Token:    token,
		Username: p.User.Username,
		Email:    p.User.Email,
		UserID:   p.ID,
	}, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*Credentials, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, apierror.Validation("Unable to log in with provided credentials.")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apierror.Validation("Unable to log in with provided credentials.")
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}

	creds := &Credentials{Token: token, Username: user.Username, Email: user.Email}
	if p, err := s.users.GetProfileByUserID(ctx, user.ID); err == nil {
		creds.UserID = p.ID
	}
	return creds, nil
}

func (s *service) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.StandardClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apierror.Unauthorized("Invalid token.")
	}

	claims, ok := token.Claims.(*jwt.StandardClaims)
	if !ok {
		return uuid.Nil, apierror.Unauthorized("Invalid token.")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apierror.Unauthorized("Invalid token.")
	}
	return userID, nil
}

func (s *service) issueToken(userID uuid.UUID) (string, error) {
	claims := &jwt.StandardClaims{
		Subject:   userID.String(),
		ExpiresAt: time.Now().Add(s.tokenTTL).Unix(),
		IssuedAt:  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
