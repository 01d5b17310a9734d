package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL profile repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const uniqueViolation = "23505"

// mapUserConflict translates a users unique violation into the matching
// duplicate error, keyed on the constraint name.
func mapUserConflict(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != uniqueViolation {
		return nil
	}
	if strings.Contains(pqErr.Constraint, "email") {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}

func (r *postgresRepo) CreateUserWithProfile(ctx context.Context, u *User, p *Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, is_staff)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsStaff)
	if err != nil {
		if dup := mapUserConflict(err); dup != nil {
			return dup
		}
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (id, user_id, type, file, location, tel, description, working_hours)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, u.ID, p.Type, p.File, p.Location, p.Tel, p.Description, p.WorkingHours)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, first_name, last_name, is_staff, created_at, updated_at
		FROM users WHERE id=$1`, id))
}

func (r *postgresRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, first_name, last_name, is_staff, created_at, updated_at
		FROM users WHERE username=$1`, username))
}

func (r *postgresRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username=$1)`, username).Scan(&exists)
	return exists, err
}

func (r *postgresRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

const profileColumns = `
	p.id, p.user_id, p.type, p.file, p.location, p.tel, p.description, p.working_hours,
	p.created_at, p.updated_at,
	u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.is_staff,
	u.created_at, u.updated_at`

func (r *postgresRepo) GetProfileByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return r.scanProfile(r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles p JOIN users u ON u.id = p.user_id
		WHERE p.id=$1`, id))
}

func (r *postgresRepo) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return r.scanProfile(r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles p JOIN users u ON u.id = p.user_id
		WHERE p.user_id=$1`, userID))
}

func (r *postgresRepo) ListProfilesByType(ctx context.Context, role policy.Role) ([]*Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles p JOIN users u ON u.id = p.user_id
		WHERE p.type=$1 ORDER BY p.created_at`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := r.scanProfileRow(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *postgresRepo) UpdateProfile(ctx context.Context, p *Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()

	_, err = tx.ExecContext(ctx, `
		UPDATE profiles
		SET file=$1, location=$2, tel=$3, description=$4, working_hours=$5, updated_at=$6
		WHERE id=$7`,
		p.File, p.Location, p.Tel, p.Description, p.WorkingHours, now, p.ID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	if p.User != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET first_name=$1, last_name=$2, email=$3, updated_at=$4
			WHERE id=$5`,
			p.User.FirstName, p.User.LastName, p.User.Email, now, p.UserID)
		if err != nil {
			return fmt.Errorf("update user: %w", err)
		}
	}

	return tx.Commit()
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepo) scanUser(row rowScanner) (*User, error) {
	u := &User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *postgresRepo) scanProfile(row rowScanner) (*Profile, error) {
	p, err := r.scanProfileRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *postgresRepo) scanProfileRow(row rowScanner) (*Profile, error) {
	p := &Profile{User: &User{}}
	err := row.Scan(
		&p.ID, &p.UserID, &p.Type, &p.File, &p.Location, &p.Tel, &p.Description,
		&p.WorkingHours, &p.CreatedAt, &p.UpdatedAt,
		&p.User.ID, &p.User.Username, &p.User.Email, &p.User.PasswordHash,
		&p.User.FirstName, &p.User.LastName, &p.User.IsStaff,
		&p.User.CreatedAt, &p.User.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
