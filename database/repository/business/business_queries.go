package businessRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"dinewise/database/repository"
	"dinewise/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// earthRadiusMeters converts a radius to the radians $centerSphere expects.
const earthRadiusMeters = 6378100.0

var searchSortFields = map[string]bool{
	"rating":       true,
	"review_count": true,
	"createdAt":    true,
	"name":         true,
}

// rankedSort is the ordering of every ranker layer.
var rankedSort = bson.D{{Key: "rating", Value: -1}, {Key: "review_count", Value: -1}, {Key: "id", Value: 1}}

// rankFilter translates a RankQuery into a Mongo filter.
func rankFilter(q RankQuery) bson.M {
	filter := bson.M{}

	var or bson.A
	if len(q.Cuisines) > 0 {
		or = append(or, bson.M{"cuisines": bson.M{"$in": q.Cuisines}})
	}
	if len(q.PriceRangeIDs) > 0 {
		or = append(or, bson.M{"priceRangeId": bson.M{"$in": q.PriceRangeIDs}})
	}
	switch len(or) {
	case 0:
	case 1:
		for k, v := range or[0].(bson.M) {
			filter[k] = v
		}
	default:
		filter["$or"] = or
	}

	if q.Near.Valid() && q.RadiusMeters > 0 {
		filter["location"] = bson.M{"$geoWithin": bson.M{
			"$centerSphere": bson.A{q.Near.Coordinates, q.RadiusMeters / earthRadiusMeters},
		}}
	} else if q.AddressContains != "" {
		filter["address"] = bson.M{"$regex": regexp.QuoteMeta(q.AddressContains), "$options": "i"}
	}

	if q.MinReviewCount > 0 {
		filter["review_count"] = bson.M{"$gte": q.MinReviewCount}
	}
	if len(q.ExcludeIDs) > 0 {
		filter["id"] = bson.M{"$nin": q.ExcludeIDs}
	}
	return filter
}

// FindRanked returns businesses matching q sorted by rating desc, review_count desc.
func (r *MongoBusinessRepo) FindRanked(ctx context.Context, q RankQuery) ([]models.Business, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(rankedSort)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := r.coll.Find(ctx, rankFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("ranked business query failed: %w", err)
	}
	defer cursor.Close(ctx)

	businesses := []models.Business{}
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, fmt.Errorf("failed to decode businesses: %w", err)
	}
	return businesses, nil
}

// searchFilter matches the query against name or cuisine and requires every selected cuisine.
func searchFilter(c SearchCriteria) bson.M {
	filter := bson.M{}
	if c.Query != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(c.Query), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"cuisines": pattern},
		}
	}
	if len(c.SelectedCuisines) > 0 {
		all := bson.A{}
		for _, cuisine := range c.SelectedCuisines {
			all = append(all, bson.M{"cuisines": bson.M{
				"$regex": "^" + regexp.QuoteMeta(cuisine) + "$", "$options": "i",
			}})
		}
		filter["$and"] = all
	}
	return filter
}

// Search finds businesses by name/cuisine text with pagination.
func (r *MongoBusinessRepo) Search(ctx context.Context, c SearchCriteria) ([]models.Business, int64, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	filter := searchFilter(c)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count businesses: %w", err)
	}

	sortField := "rating"
	if searchSortFields[c.SortBy] {
		sortField = c.SortBy
	}
	direction := -1
	if sortField == "name" {
		direction = 1
	}
	page, size := repository.NormalizePage(c.Page, c.PageSize)
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}, {Key: "id", Value: 1}}).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("business search failed: %w", err)
	}
	defer cursor.Close(ctx)

	businesses := []models.Business{}
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, 0, fmt.Errorf("failed to decode businesses: %w", err)
	}
	return businesses, total, nil
}

// CuisineSummary counts businesses per cuisine tag.
func (r *MongoBusinessRepo) CuisineSummary(ctx context.Context) ([]models.CuisineCount, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$cuisines"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$cuisines"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("cuisine summary aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	summary := []models.CuisineCount{}
	if err := cursor.All(ctx, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode cuisine summary: %w", err)
	}
	return summary, nil
}
