package baseinfo

import (
	"context"
	"math"
)

// Stats is the platform-wide aggregate payload.
type Stats struct {
	ReviewCount          int     `json:"review_count"`
	AverageRating        float64 `json:"average_rating"`
	BusinessProfileCount int     `json:"business_profile_count"`
	OfferCount           int     `json:"offer_count"`
}

// Repository defines data access for the aggregate counters.
type Repository interface {
	// Stats returns raw counts and the unrounded mean rating (0 when no
	// reviews exist).
	Stats(ctx context.Context) (*Stats, error)
}

// Service defines the base-info business logic.
type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo Repository
}

// NewService creates a new base-info service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats.AverageRating = math.Round(stats.AverageRating*10) / 10
	return stats, nil
}
