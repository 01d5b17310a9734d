// Package policy centralizes authorization. Every endpoint decision is a pure
// function of (principal, resource, verb, ownership); handlers never carry
// their own role conditionals.
package policy

import (
	"github.com/google/uuid"

	"github.com/serviceyard/serviceyard-backend/internal/apierror"
)

// Role is a profile role.
type Role string

const (
	RoleBusiness Role = "business"
	RoleCustomer Role = "customer"
)

// Valid reports whether the role is one of the known profile roles.
func (r Role) Valid() bool {
	return r == RoleBusiness || r == RoleCustomer
}

// Principal is the resolved caller identity for one request.
type Principal struct {
	Authenticated bool
	UserID        uuid.UUID
	ProfileID     uuid.UUID
	Role          Role
	Staff         bool
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal { return Principal{} }

// HasProfile reports whether the principal has a profile record.
func (p Principal) HasProfile() bool { return p.ProfileID != uuid.Nil }

// Verb is an abstract operation on a resource.
type Verb string

const (
	VerbList   Verb = "list"
	VerbRead   Verb = "read"
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)

// Resource names a protected resource class.
type Resource string

const (
	ResourceOffer       Resource = "offer"
	ResourceOfferDetail Resource = "offer_detail"
	ResourceOrder       Resource = "order"
	ResourceReview      Resource = "review"
	ResourceProfile     Resource = "profile"
)

// Ownership carries the object-level predicate results computed by the
// caller. Owner is the owning side: offers/reviews/profiles, and on orders
// the business owning the referenced offer. Party is any order participant,
// the ordering customer included.
type Ownership struct {
	Owner bool
	Party bool
}

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

// Err maps a deny decision to the API error the handler should return.
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return apierror.Unauthorized("Authentication credentials were not provided.")
	default:
		return apierror.Forbidden("You do not have permission to perform this action.")
	}
}

type rule func(p Principal, own Ownership) Decision

func public(Principal, Ownership) Decision { return Allow }

func authenticated(p Principal, _ Ownership) Decision {
	if !p.Authenticated {
		return DenyUnauthenticated
	}
	return Allow
}

func withProfile(p Principal, own Ownership) Decision {
	if d := authenticated(p, own); d != Allow {
		return d
	}
	if !p.HasProfile() {
		return DenyForbidden
	}
	return Allow
}

func requireRole(role Role) rule {
	return func(p Principal, own Ownership) Decision {
		if d := authenticated(p, own); d != Allow {
			return d
		}
		if p.Role != role {
			return DenyForbidden
		}
		return Allow
	}
}

func ownerOnly(p Principal, own Ownership) Decision {
	if d := authenticated(p, own); d != Allow {
		return d
	}
	if !own.Owner {
		return DenyForbidden
	}
	return Allow
}

func staffOnly(p Principal, _ Ownership) Decision {
	if !p.Authenticated {
		return DenyUnauthenticated
	}
	if !p.Staff {
		return DenyForbidden
	}
	return Allow
}

func orderParty(p Principal, own Ownership) Decision {
	if !p.Authenticated {
		return DenyUnauthenticated
	}
	if p.Staff || own.Party {
		return Allow
	}
	return DenyForbidden
}

// orderWrite allows staff, or the business that owns the referenced offer.
// A business that merely placed the order is a party, not the owner, and may
// not write.
func orderWrite(p Principal, own Ownership) Decision {
	if !p.Authenticated {
		return DenyUnauthenticated
	}
	if p.Staff {
		return Allow
	}
	if p.Role == RoleBusiness && own.Owner {
		return Allow
	}
	return DenyForbidden
}

// table is the full permission matrix. Entries absent from the table deny.
var table = map[Resource]map[Verb]rule{
	ResourceOffer: {
		VerbList:   public,
		VerbRead:   public,
		VerbCreate: requireRole(RoleBusiness),
		VerbUpdate: ownerOnly,
		VerbDelete: ownerOnly,
	},
	ResourceOfferDetail: {
		// Authenticated-only read: anonymous callers get 401, not a softer 404.
		VerbRead: authenticated,
	},
	ResourceOrder: {
		VerbList:   withProfile,
		VerbCreate: withProfile,
		VerbRead:   orderParty,
		VerbUpdate: orderWrite,
		VerbDelete: staffOnly,
	},
	ResourceReview: {
		VerbList:   public,
		VerbRead:   public,
		VerbCreate: requireRole(RoleCustomer),
		VerbUpdate: ownerOnly,
		VerbDelete: ownerOnly,
	},
	ResourceProfile: {
		VerbList:   authenticated,
		VerbRead:   authenticated,
		VerbUpdate: ownerOnly,
	},
}

// Evaluate looks up the rule for (resource, verb) and applies it.
func Evaluate(p Principal, res Resource, verb Verb, own Ownership) Decision {
	verbs, ok := table[res]
	if !ok {
		return DenyForbidden
	}
	r, ok := verbs[verb]
	if !ok {
		return DenyForbidden
	}
	return r(p, own)
}

// Check is Evaluate with the decision already mapped to an error.
func Check(p Principal, res Resource, verb Verb, own Ownership) error {
	return Evaluate(p, res, verb, own).Err()
}
