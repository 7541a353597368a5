package models

import (
	"time"
)

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from a latitude/longitude pair.
func NewGeoPoint(lat, lng float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Valid reports whether the point carries a usable [lng, lat] pair.
func (p *GeoPoint) Valid() bool {
	if p == nil || len(p.Coordinates) != 2 {
		return false
	}
	lng, lat := p.Coordinates[0], p.Coordinates[1]
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

// RatingTotals holds the running sums of every review's category ratings.
// The per-category averages on Business are derived from these and ReviewCount.
type RatingTotals struct {
	Food     float64 `bson:"food" json:"food"`
	Service  float64 `bson:"service" json:"service"`
	Ambience float64 `bson:"ambience" json:"ambience"`
}

// RatingDelta is a signed change to a business's rating totals.
type RatingDelta struct {
	Food     float64
	Service  float64
	Ambience float64
	Count    int
}

// Business is a listed restaurant or venue.
type Business struct {
	ID           string    `bson:"id" json:"id"`
	OwnerID      string    `bson:"ownerId" json:"ownerId"`
	Name         string    `bson:"name" json:"name"`
	Description  string    `bson:"description" json:"description"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Address      string    `bson:"address" json:"address"`
	Website      string    `bson:"website,omitempty" json:"website,omitempty"`
	ImageURL     string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Images       []string  `bson:"images" json:"images"`
	Cuisines     []string  `bson:"cuisines" json:"cuisines"`
	PriceRangeID string    `bson:"priceRangeId,omitempty" json:"priceRangeId,omitempty"`
	Location     *GeoPoint `bson:"location,omitempty" json:"location,omitempty"`

	// Denormalized aggregates maintained by the rating aggregator.
	Rating         float64      `bson:"rating" json:"rating"`
	FoodRating     float64      `bson:"foodRating" json:"foodRating"`
	ServiceRating  float64      `bson:"serviceRating" json:"serviceRating"`
	AmbienceRating float64      `bson:"ambienceRating" json:"ambienceRating"`
	ReviewCount    int          `bson:"review_count" json:"review_count"`
	RatingTotals   RatingTotals `bson:"ratingTotals" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ApplyRatingDelta adds delta to the running totals and recomputes the means.
// The review count never drops below zero and an empty business has all-zero aggregates.
func (b *Business) ApplyRatingDelta(d RatingDelta) {
	b.RatingTotals.Food += d.Food
	b.RatingTotals.Service += d.Service
	b.RatingTotals.Ambience += d.Ambience
	b.ReviewCount += d.Count
	b.RecomputeMeans()
}

// SetRatingAggregate overwrites totals and count, as a full-scan reconciliation does.
func (b *Business) SetRatingAggregate(totals RatingTotals, count int) {
	b.RatingTotals = totals
	b.ReviewCount = count
	b.RecomputeMeans()
}

// RecomputeMeans derives the four rating fields from RatingTotals and ReviewCount.
func (b *Business) RecomputeMeans() {
	if b.ReviewCount <= 0 {
		b.ReviewCount = 0
		b.RatingTotals = RatingTotals{}
		b.Rating, b.FoodRating, b.ServiceRating, b.AmbienceRating = 0, 0, 0, 0
		return
	}
	n := float64(b.ReviewCount)
	b.FoodRating = b.RatingTotals.Food / n
	b.ServiceRating = b.RatingTotals.Service / n
	b.AmbienceRating = b.RatingTotals.Ambience / n
	b.Rating = (b.FoodRating + b.ServiceRating + b.AmbienceRating) / 3
}

// BusinessStats is the per-business star histogram.
type BusinessStats struct {
	BusinessID string `bson:"businessId" json:"businessId"`
	Count1Star int    `bson:"count1Star" json:"count1Star"`
	Count2Star int    `bson:"count2Star" json:"count2Star"`
	Count3Star int    `bson:"count3Star" json:"count3Star"`
	Count4Star int    `bson:"count4Star" json:"count4Star"`
	Count5Star int    `bson:"count5Star" json:"count5Star"`
}

// StarField returns the bson field holding the given star bucket.
func StarField(star int) string {
	switch star {
	case 1:
		return "count1Star"
	case 2:
		return "count2Star"
	case 3:
		return "count3Star"
	case 4:
		return "count4Star"
	case 5:
		return "count5Star"
	}
	return ""
}

// Add increments the bucket for star by n. Unknown buckets are ignored.
func (s *BusinessStats) Add(star, n int) {
	switch star {
	case 1:
		s.Count1Star += n
	case 2:
		s.Count2Star += n
	case 3:
		s.Count3Star += n
	case 4:
		s.Count4Star += n
	case 5:
		s.Count5Star += n
	}
}

// Count returns the number of reviews in the given star bucket.
func (s BusinessStats) Count(star int) int {
	switch star {
	case 1:
		return s.Count1Star
	case 2:
		return s.Count2Star
	case 3:
		return s.Count3Star
	case 4:
		return s.Count4Star
	case 5:
		return s.Count5Star
	}
	return 0
}

// PriceRange is a bounded price bracket referenced by businesses.
type PriceRange struct {
	ID         string  `bson:"id" json:"id"`
	LowerBound float64 `bson:"lowerBound" json:"lowerBound"`
	UpperBound float64 `bson:"upperBound" json:"upperBound"`
}

// CuisineCount is one row of the cuisine summary.
type CuisineCount struct {
	Cuisine string `bson:"_id" json:"cuisine"`
	Count   int    `bson:"count" json:"count"`
}

// BusinessDetail is a business together with its star histogram.
type BusinessDetail struct {
	Business
	Stats BusinessStats `json:"stats"`
}
