package models

import "time"

// Rating bounds for a single review category.
const (
	MinCategoryRating = 1
	MaxCategoryRating = 5
)

// Review is a customer's rating and write-up of a business.
type Review struct {
	ID             string    `bson:"id" json:"id"`
	BusinessID     string    `bson:"businessId" json:"businessId"`
	CustomerID     string    `bson:"customerId" json:"customerId"`
	Title          string    `bson:"title" json:"title"`
	Text           string    `bson:"text" json:"text"`
	FoodRating     int       `bson:"foodRating" json:"foodRating"`
	ServiceRating  int       `bson:"serviceRating" json:"serviceRating"`
	AmbienceRating int       `bson:"ambienceRating" json:"ambienceRating"`
	Rating         float64   `bson:"rating" json:"rating"`
	Images         []string  `bson:"images" json:"images"`
	Upvotes        int       `bson:"upvotes" json:"upvotes"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`

	// Populated per request, never stored.
	IsUpvoted bool            `bson:"-" json:"isUpvoted"`
	Response  *ReviewResponse `bson:"-" json:"response,omitempty"`
}

// DeriveRating sets Rating to the mean of the three category ratings.
func (r *Review) DeriveRating() {
	r.Rating = float64(r.FoodRating+r.ServiceRating+r.AmbienceRating) / 3
}

// Contribution is the review's share of its business's rating totals.
func (r Review) Contribution() RatingDelta {
	return RatingDelta{
		Food:     float64(r.FoodRating),
		Service:  float64(r.ServiceRating),
		Ambience: float64(r.AmbienceRating),
		Count:    1,
	}
}

// ReviewUpvote records that a customer upvoted a review. (ReviewID, CustomerID) is unique.
type ReviewUpvote struct {
	ReviewID   string    `bson:"reviewId" json:"reviewId"`
	CustomerID string    `bson:"customerId" json:"customerId"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// ReviewResponse is the owner's public reply to a review.
type ReviewResponse struct {
	ID         string    `bson:"id" json:"id"`
	ReviewID   string    `bson:"reviewId" json:"reviewId"`
	BusinessID string    `bson:"businessId" json:"businessId"`
	Text       string    `bson:"text" json:"text"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// VoteDirection is the requested change to an upvote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "upvote"
	VoteDown VoteDirection = "downvote"
)

// UpvoteResult reports the review's counter after a vote toggle.
type UpvoteResult struct {
	ReviewID string `json:"reviewId"`
	Upvotes  int    `json:"upvotes"`
	Changed  bool   `json:"changed"`
}
