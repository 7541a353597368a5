package models

import "time"

// Role discriminates the two kinds of principals.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleOwner
}

// Customer authors reviews and upvotes.
type Customer struct {
	ID                string    `bson:"id" json:"id"`
	Email             string    `bson:"email" json:"email"`
	PasswordHash      string    `bson:"passwordHash" json:"-"`
	FirstName         string    `bson:"firstName" json:"firstName"`
	LastName          string    `bson:"lastName" json:"lastName"`
	Bio               string    `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfileImage      string    `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	ReviewCount       int       `bson:"review_count" json:"review_count"`
	PreferredCuisines []string  `bson:"preferredCuisines" json:"preferredCuisines"`
	PreferredSuburb   string    `bson:"preferredSuburb,omitempty" json:"preferredSuburb,omitempty"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Owner manages businesses and deals.
type Owner struct {
	ID           string    `bson:"id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	FirstName    string    `bson:"firstName" json:"firstName"`
	LastName     string    `bson:"lastName" json:"lastName"`
	ProfileImage string    `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Principal is the authenticated caller. Exactly one of Customer or Owner is set, matching Role.
type Principal struct {
	Role     Role      `json:"role"`
	Customer *Customer `json:"customer,omitempty"`
	Owner    *Owner    `json:"owner,omitempty"`
}

// CustomerPrincipal wraps a customer.
func CustomerPrincipal(c *Customer) *Principal {
	return &Principal{Role: RoleCustomer, Customer: c}
}

// OwnerPrincipal wraps an owner.
func OwnerPrincipal(o *Owner) *Principal {
	return &Principal{Role: RoleOwner, Owner: o}
}

// ID returns the identity of whichever role the principal carries.
func (p *Principal) ID() string {
	switch {
	case p == nil:
		return ""
	case p.Role == RoleCustomer && p.Customer != nil:
		return p.Customer.ID
	case p.Role == RoleOwner && p.Owner != nil:
		return p.Owner.ID
	}
	return ""
}

// AuthToken is returned by a successful login or registration.
type AuthToken struct {
	Token     string     `json:"token"`
	Role      Role       `json:"role"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Principal *Principal `json:"principal"`
}
