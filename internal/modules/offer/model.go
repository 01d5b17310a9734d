package offer

import (
	"time"

	"github.com/google/uuid"
)

// DetailType is a package tier within an offer.
type DetailType string

const (
	TypeBasic    DetailType = "basic"
	TypeStandard DetailType = "standard"
	TypePremium  DetailType = "premium"
)

// Valid reports whether the tier is one of the known package tiers.
func (t DetailType) Valid() bool {
	return t == TypeBasic || t == TypeStandard || t == TypePremium
}

// Offer is a business's published service listing.
type Offer struct {
	ID          uuid.UUID `json:"id"`
	ProfileID   uuid.UUID `json:"profile_id"`
	Title       string    `json:"title"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Details []*OfferDetail `json:"details,omitempty"`

	// Aggregates and owner fields, populated on reads.
	MinPrice        *float64 `json:"min_price,omitempty"`
	MinDeliveryTime *int     `json:"min_delivery_time,omitempty"`
	OwnerFirstName  string   `json:"-"`
	OwnerLastName   string   `json:"-"`
	OwnerUsername   string   `json:"-"`
}

// OfferDetail is one fixed-price package within an offer. Revisions of -1
// means unlimited.
type OfferDetail struct {
	ID                 uuid.UUID  `json:"id"`
	OfferID            uuid.UUID  `json:"offer_id"`
	Title              string     `json:"title"`
	Revisions          int        `json:"revisions"`
	DeliveryTimeInDays int        `json:"delivery_time_in_days"`
	Price              float64    `json:"price"`
	Features           []string   `json:"features"`
	OfferType          DetailType `json:"offer_type"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// DetailPayload is the nested detail input for offer create/update. On
// create every field is required; on a merge-by-tier update only offer_type
// is, the rest overwrite when present.
type DetailPayload struct {
	Title              *string  `json:"title"`
	Revisions          *int     `json:"revisions"`
	DeliveryTimeInDays *int     `json:"delivery_time_in_days"`
	Price              *float64 `json:"price"`
	Features           []string `json:"features"`
	OfferType          string   `json:"offer_type"`
}

// CreateRequest is the payload for creating an offer with its packages.
type CreateRequest struct {
	Title       string          `json:"title"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Details     []DetailPayload `json:"details"`
}

// UpdateRequest is the partial-update payload. Nil top-level fields are left
// untouched; Details, when present, are merged by offer_type.
type UpdateRequest struct {
	Title       *string         `json:"title"`
	Image       *string         `json:"image"`
	Description *string         `json:"description"`
	Details     []DetailPayload `json:"details"`
}

// UserDetails is the owner summary embedded in offer responses.
type UserDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// DetailRef is the light representation of a package: id plus its endpoint.
type DetailRef struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

// DetailResponse is the full package representation, without cross-references.
type DetailResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Revisions          int        `json:"revisions"`
	DeliveryTimeInDays int        `json:"delivery_time_in_days"`
	Price              float64    `json:"price"`
	Features           []string   `json:"features"`
	OfferType          DetailType `json:"offer_type"`
}

// Response is an offer as serialized for clients. Details holds either
// []DetailRef (light shape) or []DetailResponse (write responses).
type Response struct {
	ID              uuid.UUID   `json:"id"`
	User            uuid.UUID   `json:"user"`
	Title           string      `json:"title"`
	Image           string      `json:"image"`
	Description     string      `json:"description"`
	Details         interface{} `json:"details"`
	MinPrice        *float64    `json:"min_price"`
	MinDeliveryTime *int        `json:"min_delivery_time"`
	UserDetails     UserDetails `json:"user_details"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewDetailResponse maps a detail row to its full representation.
func NewDetailResponse(d *OfferDetail) DetailResponse {
	features := d.Features
	if features == nil {
		features = []string{}
	}
	return DetailResponse{
		ID:                 d.ID,
		Title:              d.Title,
		Revisions:          d.Revisions,
		DeliveryTimeInDays: d.DeliveryTimeInDays,
		Price:              d.Price,
		Features:           features,
		OfferType:          d.OfferType,
	}
}

// NewLightResponse serializes an offer with light {id, url} detail refs.
func NewLightResponse(o *Offer) Response {
	refs := make([]DetailRef, 0, len(o.Details))
	for _, d := range o.Details {
		refs = append(refs, DetailRef{ID: d.ID, URL: "/offer-details/" + d.ID.String()})
	}
	return newResponse(o, refs)
}

// NewWriteResponse serializes an offer with full detail objects, as returned
// from create and update.
func NewWriteResponse(o *Offer) Response {
	details := make([]DetailResponse, 0, len(o.Details))
	for _, d := range o.Details {
		details = append(details, NewDetailResponse(d))
	}
	return newResponse(o, details)
}

func newResponse(o *Offer, details interface{}) Response {
	return Response{
		ID:              o.ID,
		User:            o.ProfileID,
		Title:           o.Title,
		Image:           o.Image,
		Description:     o.Description,
		Details:         details,
		MinPrice:        o.MinPrice,
		MinDeliveryTime: o.MinDeliveryTime,
		UserDetails: UserDetails{
			FirstName: o.OwnerFirstName,
			LastName:  o.OwnerLastName,
			Username:  o.OwnerUsername,
		},
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
