package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/serviceyard/serviceyard-backend/internal/policy"
)

// User is an authenticated account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	IsStaff      bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the role-tagged identity attached to a user. Type is immutable
// after creation.
type Profile struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	Type         policy.Role `json:"type"`
	File         string      `json:"file,omitempty"`
	Location     string      `json:"location,omitempty"`
	Tel          string      `json:"tel,omitempty"`
	Description  string      `json:"description,omitempty"`
	WorkingHours string      `json:"working_hours,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`

	// User is populated on reads that join the users table.
	User *User `json:"-"`
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	RepeatedPassword string `json:"repeated_password"`
	Type             string `json:"type"`
}

// UpdateRequest is the partial-update payload for a profile. Nil fields are
// left untouched.
type UpdateRequest struct {
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Email        *string `json:"email"`
	File         *string `json:"file"`
	Location     *string `json:"location"`
	Tel          *string `json:"tel"`
	Description  *string `json:"description"`
	WorkingHours *string `json:"working_hours"`
}

// Response is the formatted profile payload the frontend expects. The "user"
// field carries the profile id.
type Response struct {
	User         uuid.UUID `json:"user"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	File         *string   `json:"file"`
	Location     string    `json:"location"`
	Tel          string    `json:"tel"`
	Description  string    `json:"description"`
	WorkingHours string    `json:"working_hours"`
	Type         string    `json:"type"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewResponse formats a profile. baseURL, when non-empty, turns the stored
// avatar filename into an absolute URL; otherwise the bare filename is kept.
func NewResponse(p *Profile, baseURL string) Response {
	resp := Response{
		User:         p.ID,
		Location:     p.Location,
		Tel:          p.Tel,
		Description:  p.Description,
		WorkingHours: p.WorkingHours,
		Type:         string(p.Type),
		CreatedAt:    p.CreatedAt,
	}
	if p.User != nil {
		resp.Username = p.User.Username
		resp.FirstName = p.User.FirstName
		resp.LastName = p.User.LastName
		resp.Email = p.User.Email
	}
	if p.File != "" {
		file := p.File
		if baseURL != "" {
			file = baseURL + "/media/" + p.File
		}
		resp.File = &file
	}
	return resp
}
