package models

import "time"

type DealType string

const (
	DealPercentage  DealType = "PERCENTAGE"
	DealFixedAmount DealType = "FIXED_AMOUNT"
	DealBOGO        DealType = "BOGO"
	DealFreeItem    DealType = "FREE_ITEM"
	DealSetMenu     DealType = "SET_MENU"
)

type DealStatus string

const (
	DealScheduled DealStatus = "SCHEDULED"
	DealActive    DealStatus = "ACTIVE"
	DealExpired   DealStatus = "EXPIRED"
	DealInactive  DealStatus = "INACTIVE"
)

// DefaultRedemptionInfo is shown when the owner leaves redemption instructions blank.
const DefaultRedemptionInfo = "Show this deal in-store or mention when ordering."

// Deal is a time-bounded promotional offer attached to a business.
type Deal struct {
	ID             string     `bson:"id" json:"id"`
	BusinessID     string     `bson:"businessId" json:"businessId"`
	OwnerID        string     `bson:"ownerId" json:"ownerId"`
	Title          string     `bson:"title" json:"title"`
	Description    string     `bson:"description,omitempty" json:"description,omitempty"`
	Type           DealType   `bson:"type" json:"type"`
	DiscountValue  *float64   `bson:"discountValue,omitempty" json:"discountValue,omitempty"`
	StartDate      time.Time  `bson:"startDate" json:"startDate"`
	EndDate        time.Time  `bson:"endDate" json:"endDate"`
	Status         DealStatus `bson:"status" json:"status"`
	RedemptionInfo string     `bson:"redemptionInfo" json:"redemptionInfo"`
	AppliesTo      string     `bson:"appliesTo,omitempty" json:"appliesTo,omitempty"`
	MinimumSpend   float64    `bson:"minimumSpend" json:"minimumSpend"`
	CreatedAt      time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt" json:"updatedAt"`

	// Populated for listings that show the deal's business.
	Business *Business `bson:"-" json:"business,omitempty"`
}
