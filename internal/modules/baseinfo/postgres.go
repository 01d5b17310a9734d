package baseinfo

import (
	"context"
	"database/sql"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL base-info repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	// COALESCE keeps the zero-review case at 0.0 instead of NULL.
	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM reviews),
		       (SELECT COALESCE(AVG(rating), 0) FROM reviews),
		       (SELECT COUNT(*) FROM profiles WHERE type = 'business'),
		       (SELECT COUNT(*) FROM offers)`).Scan(
		&stats.ReviewCount, &stats.AverageRating, &stats.BusinessProfileCount, &stats.OfferCount)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
