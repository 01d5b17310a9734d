package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL review repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const uniqueViolation = "23505"

func (r *postgresRepo) Create(ctx context.Context, rev *Review) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (id, business_profile_id, reviewer_profile_id, rating, description)
		VALUES ($1,$2,$3,$4,$5)`,
		rev.ID, rev.BusinessProfileID, rev.ReviewerProfileID, rev.Rating, rev.Description)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	rev, err := scanReview(r.db.QueryRowContext(ctx, `
		SELECT id, business_profile_id, reviewer_profile_id, rating, description, created_at, updated_at
		FROM reviews WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rev, err
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Review, error) {
	var where []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.BusinessProfileID != nil {
		where = append(where, "business_profile_id = "+arg(*f.BusinessProfileID))
	}
	if f.ReviewerProfileID != nil {
		where = append(where, "reviewer_profile_id = "+arg(*f.ReviewerProfileID))
	}

	query := `
		SELECT id, business_profile_id, reviewer_profile_id, rating, description, created_at, updated_at
		FROM reviews`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderClause(f.Ordering)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, rev *Review) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reviews SET rating=$1, description=$2, updated_at=$3 WHERE id=$4`,
		rev.Rating, rev.Description, time.Now(), rev.ID)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ExistsForPair(ctx context.Context, businessID, reviewerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reviews WHERE business_profile_id=$1 AND reviewer_profile_id=$2
		)`, businessID, reviewerID).Scan(&exists)
	return exists, err
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanReview(row rowScanner) (*Review, error) {
	rev := &Review{}
	err := row.Scan(
		&rev.ID, &rev.BusinessProfileID, &rev.ReviewerProfileID,
		&rev.Rating, &rev.Description, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func orderClause(ordering string) string {
	switch ordering {
	case "-updated_at":
		return "updated_at DESC"
	case "rating":
		return "rating ASC"
	case "-rating":
		return "rating DESC"
	default:
		return "updated_at ASC"
	}
}
