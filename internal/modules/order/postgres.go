package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL order repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderSelect = `
	SELECT ord.id, ord.customer_profile_id, ord.offer_detail_id, ord.status,
	       ord.created_at, ord.updated_at,
	       d.title, d.revisions, d.delivery_time_in_days, d.price, d.features, d.offer_type,
	       o.profile_id
	FROM orders ord
	JOIN offer_details d ON d.id = ord.offer_detail_id
	JOIN offers o ON o.id = d.offer_id`

func (r *postgresRepo) Create(ctx context.Context, o *Order) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, customer_profile_id, offer_detail_id, status)
		VALUES ($1,$2,$3,$4)`,
		o.ID, o.CustomerProfileID, o.OfferDetailID, o.Status)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE ord.id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, profileID uuid.UUID) ([]*Order, error) {
	return r.queryOrders(ctx, orderSelect+
		` WHERE ord.customer_profile_id=$1 ORDER BY ord.created_at DESC`, profileID)
}

func (r *postgresRepo) ListByBusiness(ctx context.Context, profileID uuid.UUID) ([]*Order, error) {
	return r.queryOrders(ctx, orderSelect+
		` WHERE o.profile_id=$1 ORDER BY ord.created_at DESC`, profileID)
}

func (r *postgresRepo) CountByBusinessStatus(ctx context.Context, profileID uuid.UUID, status Status) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM orders ord
		JOIN offer_details d ON d.id = ord.offer_detail_id
		JOIN offers o ON o.id = d.offer_id
		WHERE o.profile_id=$1 AND ord.status=$2`, profileID, status).Scan(&count)
	return count, err
}

func (r *postgresRepo) OfferDetailExists(ctx context.Context, detailID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM offer_details WHERE id=$1)`, detailID).Scan(&exists)
	return exists, err
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now(), id)
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

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id=$1`, id)
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

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var features []byte
	err := row.Scan(
		&o.ID, &o.CustomerProfileID, &o.OfferDetailID, &o.Status,
		&o.CreatedAt, &o.UpdatedAt,
		&o.Title, &o.Revisions, &o.DeliveryTimeInDays, &o.Price, &features, &o.OfferType,
		&o.BusinessProfileID)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(features, &o.Features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	return o, nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
