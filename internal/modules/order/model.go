package order

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an order. No transition graph is
// enforced: any authorized writer may set any value, including moving a
// completed order back to in_progress.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	return s == StatusInProgress || s == StatusCompleted || s == StatusCancelled
}

// Order is a customer's purchase of one package. Package fields (title,
// price, delivery and so on) are never snapshotted; reads resolve them live
// through the referenced detail, so later edits to the package show up on
// re-read.
type Order struct {
	ID                uuid.UUID `json:"id"`
	CustomerProfileID uuid.UUID `json:"customer_profile_id"`
	OfferDetailID     uuid.UUID `json:"offer_detail_id"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Resolved through detail → offer → owner on every read.
	Title              string    `json:"-"`
	Revisions          int       `json:"-"`
	DeliveryTimeInDays int       `json:"-"`
	Price              float64   `json:"-"`
	Features           []string  `json:"-"`
	OfferType          string    `json:"-"`
	BusinessProfileID  uuid.UUID `json:"-"`
}

// CreateRequest is the payload for placing an order.
type CreateRequest struct {
	OfferDetailID string `json:"offer_detail_id"`
}

// UpdateStatusRequest is the payload for changing an order's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// Response is an order as serialized for clients.
type Response struct {
	ID                 uuid.UUID `json:"id"`
	Title              string    `json:"title"`
	CustomerUser       uuid.UUID `json:"customer_user"`
	BusinessUser       uuid.UUID `json:"business_user"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Revisions          int       `json:"revisions"`
	Price              float64   `json:"price"`
	DeliveryTimeInDays int       `json:"delivery_time_in_days"`
	Features           []string  `json:"features"`
	OfferType          string    `json:"offer_type"`
}

// NewResponse maps an order row to its client representation.
func NewResponse(o *Order) Response {
	features := o.Features
	if features == nil {
		features = []string{}
	}
	return Response{
		ID:                 o.ID,
		Title:              o.Title,
		CustomerUser:       o.CustomerProfileID,
		BusinessUser:       o.BusinessProfileID,
		Status:             o.Status,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		Revisions:          o.Revisions,
		Price:              o.Price,
		DeliveryTimeInDays: o.DeliveryTimeInDays,
		Features:           features,
		OfferType:          o.OfferType,
	}
}
