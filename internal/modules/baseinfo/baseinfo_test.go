package baseinfo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	stats Stats
}

func (s *stubRepo) Stats(ctx context.Context) (*Stats, error) {
	out := s.stats
	return &out, nil
}

func TestStatsRoundsAverage(t *testing.T) {
	cases := []struct {
		name string
		raw  float64
		want float64
	}{
		{"repeating decimal", 4.666666, 4.7},
		{"rounds half up", 3.25, 3.3},
		{"already one decimal", 4.5, 4.5},
		{"whole number", 4, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(&stubRepo{stats: Stats{ReviewCount: 3, AverageRating: tc.raw}})
			got, err := svc.Stats(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.AverageRating)
		})
	}
}

func TestStatsEmptyPlatform(t *testing.T) {
	svc := NewService(&stubRepo{})
	got, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReviewCount)
	assert.Equal(t, 0.0, got.AverageRating)
	assert.Equal(t, 0, got.BusinessProfileCount)
	assert.Equal(t, 0, got.OfferCount)
}
