package offer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL offer repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const uniqueViolation = "23505"

const listBase = `
	FROM offers o
	JOIN profiles p ON p.id = o.profile_id
	JOIN users u ON u.id = p.user_id
	LEFT JOIN offer_details d ON d.offer_id = o.id`

const groupBy = ` GROUP BY o.id, u.first_name, u.last_name, u.username`

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]*Offer, int, error) {
	var where, having []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.CreatorID != nil {
		where = append(where, "o.profile_id = "+arg(*f.CreatorID))
	}
	if f.Search != "" {
		placeholder := arg("%" + f.Search + "%")
		where = append(where, "(o.title ILIKE "+placeholder+" OR o.description ILIKE "+placeholder+")")
	}
	if f.MaxDeliveryTime != nil {
		having = append(having, "MIN(d.delivery_time_in_days) <= "+arg(*f.MaxDeliveryTime))
	}
	if f.MinPrice != nil {
		having = append(having, "MIN(d.price) >= "+arg(*f.MinPrice))
	}

	clause := listBase
	if len(where) > 0 {
		clause += " WHERE " + strings.Join(where, " AND ")
	}
	clause += groupBy
	if len(having) > 0 {
		clause += " HAVING " + strings.Join(having, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM (SELECT o.id` + clause + `) matches`
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count offers: %w", err)
	}

	query := `
		SELECT o.id, o.profile_id, o.title, o.image, o.description, o.created_at, o.updated_at,
		       MIN(d.price), MIN(d.delivery_time_in_days),
		       u.first_name, u.last_name, u.username` +
		clause + ` ORDER BY ` + orderClause(f.Ordering) +
		` LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	var offers []*Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, 0, err
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachDetails(ctx, offers); err != nil {
		return nil, 0, err
	}
	return offers, total, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Offer, error) {
	o, err := scanOffer(r.db.QueryRowContext(ctx, `
		SELECT o.id, o.profile_id, o.title, o.image, o.description, o.created_at, o.updated_at,
		       MIN(d.price), MIN(d.delivery_time_in_days),
		       u.first_name, u.last_name, u.username`+
		listBase+` WHERE o.id = $1`+groupBy, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachDetails(ctx, []*Offer{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) Create(ctx context.Context, o *Offer) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO offers (id, profile_id, title, image, description)
		VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.ProfileID, o.Title, o.Image, o.Description)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}

	for _, d := range o.Details {
		if err := insertDetail(ctx, tx, o.ID, d); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) Update(ctx context.Context, o *Offer, update, insert []*OfferDetail) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE offers SET title=$1, image=$2, description=$3, updated_at=$4
		WHERE id=$5`,
		o.Title, o.Image, o.Description, time.Now(), o.ID)
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}

	for _, d := range update {
		features, err := json.Marshal(d.Features)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE offer_details
			SET title=$1, revisions=$2, delivery_time_in_days=$3, price=$4, features=$5, updated_at=$6
			WHERE id=$7`,
			d.Title, d.Revisions, d.DeliveryTimeInDays, d.Price, features, time.Now(), d.ID)
		if err != nil {
			return fmt.Errorf("update offer detail: %w", err)
		}
	}

	for _, d := range insert {
		if err := insertDetail(ctx, tx, o.ID, d); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM offers WHERE id=$1`, id)
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

func (r *postgresRepo) GetDetail(ctx context.Context, id uuid.UUID) (*OfferDetail, error) {
	d := &OfferDetail{}
	var features []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, offer_id, title, revisions, delivery_time_in_days, price, features, offer_type,
		       created_at, updated_at
		FROM offer_details WHERE id=$1`, id).Scan(
		&d.ID, &d.OfferID, &d.Title, &d.Revisions, &d.DeliveryTimeInDays, &d.Price,
		&features, &d.OfferType, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(features, &d.Features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	return d, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanOffer(row rowScanner) (*Offer, error) {
	o := &Offer{}
	var minPrice sql.NullFloat64
	var minDelivery sql.NullInt64
	err := row.Scan(
		&o.ID, &o.ProfileID, &o.Title, &o.Image, &o.Description, &o.CreatedAt, &o.UpdatedAt,
		&minPrice, &minDelivery,
		&o.OwnerFirstName, &o.OwnerLastName, &o.OwnerUsername)
	if err != nil {
		return nil, err
	}
	if minPrice.Valid {
		o.MinPrice = &minPrice.Float64
	}
	if minDelivery.Valid {
		days := int(minDelivery.Int64)
		o.MinDeliveryTime = &days
	}
	return o, nil
}

func (r *postgresRepo) attachDetails(ctx context.Context, offers []*Offer) error {
	if len(offers) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*Offer, len(offers))
	ids := make([]string, 0, len(offers))
	for _, o := range offers {
		byID[o.ID] = o
		ids = append(ids, o.ID.String())
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, offer_id, title, revisions, delivery_time_in_days, price, features, offer_type,
		       created_at, updated_at
		FROM offer_details WHERE offer_id = ANY($1) ORDER BY created_at`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list offer details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d := &OfferDetail{}
		var features []byte
		if err := rows.Scan(
			&d.ID, &d.OfferID, &d.Title, &d.Revisions, &d.DeliveryTimeInDays, &d.Price,
			&features, &d.OfferType, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return err
		}
		if err := json.Unmarshal(features, &d.Features); err != nil {
			return fmt.Errorf("decode features: %w", err)
		}
		if o, ok := byID[d.OfferID]; ok {
			o.Details = append(o.Details, d)
		}
	}
	return rows.Err()
}

func insertDetail(ctx context.Context, tx *sql.Tx, offerID uuid.UUID, d *OfferDetail) error {
	features, err := json.Marshal(d.Features)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO offer_details
		  (id, offer_id, title, revisions, delivery_time_in_days, price, features, offer_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, offerID, d.Title, d.Revisions, d.DeliveryTimeInDays, d.Price, features, d.OfferType)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrDuplicateTier
		}
		return fmt.Errorf("insert offer detail: %w", err)
	}
	return nil
}

func orderClause(ordering string) string {
	switch ordering {
	case "-updated_at":
		return "o.updated_at DESC"
	case "min_price":
		return "MIN(d.price) ASC NULLS LAST"
	case "-min_price":
		return "MIN(d.price) DESC NULLS LAST"
	default:
		return "o.updated_at ASC"
	}
}
