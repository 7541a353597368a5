// Package memory is an in-process implementation of every repository
// interface. It backs STORE_DRIVER=memory and the service tests, and mirrors
// the Mongo repositories' semantics: unique keys become conflicts, missing
// documents become not-found errors and counters never go negative.
package memory

import (
	"math"
	"slices"
	"strings"
	"sync"

	"dinewise/models"
)

// Store holds all collections behind one lock.
type Store struct {
	mu sync.RWMutex

	businesses  map[string]models.Business
	stats       map[string]models.BusinessStats
	priceRanges map[string]models.PriceRange
	reviews     map[string]models.Review
	upvotes     map[upvoteKey]models.ReviewUpvote
	responses   map[string]models.ReviewResponse // keyed by review id
	deals       map[string]models.Deal
	customers   map[string]models.Customer
	owners      map[string]models.Owner
}

type upvoteKey struct{ reviewID, customerID string }

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		businesses:  map[string]models.Business{},
		stats:       map[string]models.BusinessStats{},
		priceRanges: map[string]models.PriceRange{},
		reviews:     map[string]models.Review{},
		upvotes:     map[upvoteKey]models.ReviewUpvote{},
		responses:   map[string]models.ReviewResponse{},
		deals:       map[string]models.Deal{},
		customers:   map[string]models.Customer{},
		owners:      map[string]models.Owner{},
	}
}

func (s *Store) Businesses() *BusinessRepo { return &BusinessRepo{s} }
func (s *Store) Stats() *StatsRepo { return &StatsRepo{s} }
func (s *Store) PriceRanges() *PriceRangeRepo { return &PriceRangeRepo{s} }
func (s *Store) Reviews() *ReviewRepo { return &ReviewRepo{s} }
func (s *Store) Upvotes() *UpvoteRepo { return &UpvoteRepo{s} }
func (s *Store) Responses() *ResponseRepo { return &ResponseRepo{s} }
func (s *Store) Deals() *DealRepo { return &DealRepo{s} }
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{s} }
func (s *Store) Owners() *OwnerRepo { return &OwnerRepo{s} }

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anyIn(values, set []string) bool {
	for _, v := range values {
		if slices.Contains(set, v) {
			return true
		}
	}
	return false
}

// haversineMeters is the great-circle distance between two GeoJSON points,
// using the same earth radius as the Mongo $centerSphere query.
func haversineMeters(a, b *models.GeoPoint) float64 {
	const earthRadius = 6378100.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	lat1, lat2 := toRad(a.Coordinates[1]), toRad(b.Coordinates[1])
	dLat := lat2 - lat1
	dLng := toRad(b.Coordinates[0] - a.Coordinates[0])

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

func page[T any](items []T, pageNum, size int) []T {
	start := (pageNum - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}
