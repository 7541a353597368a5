package businessRepo

import (
	"context"
	"fmt"
	"time"

	"dinewise/database/repository"
	"dinewise/models"
	"dinewise/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ratingDeltaPipeline builds an update pipeline that adds delta to the stored
// totals and review count, then derives the four means from the new values.
// Running as one pipeline update keeps concurrent reviews on the same business
// from overwriting each other.
func ratingDeltaPipeline(delta models.RatingDelta, now time.Time) mongo.Pipeline {
	add := func(field string, v interface{}) bson.D {
		return bson.D{{Key: "$add", Value: bson.A{
			bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, 0}}},
			v,
		}}}
	}

	return append(mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "ratingTotals.food", Value: add("ratingTotals.food", delta.Food)},
			{Key: "ratingTotals.service", Value: add("ratingTotals.service", delta.Service)},
			{Key: "ratingTotals.ambience", Value: add("ratingTotals.ambience", delta.Ambience)},
			{Key: "review_count", Value: bson.D{{Key: "$max", Value: bson.A{add("review_count", delta.Count), 0}}}},
			{Key: "updatedAt", Value: now},
		}}},
	}, meanStages()...)
}

// ratingOverwritePipeline sets totals and count outright, then derives the means.
func ratingOverwritePipeline(totals models.RatingTotals, count int, now time.Time) mongo.Pipeline {
	return append(mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "ratingTotals", Value: bson.D{
				{Key: "food", Value: totals.Food},
				{Key: "service", Value: totals.Service},
				{Key: "ambience", Value: totals.Ambience},
			}},
			{Key: "review_count", Value: count},
			{Key: "updatedAt", Value: now},
		}}},
	}, meanStages()...)
}

// meanStages derives foodRating/serviceRating/ambienceRating and rating from
// ratingTotals and review_count. A business with no reviews has every field at 0.
func meanStages() mongo.Pipeline {
	hasReviews := bson.D{{Key: "$gt", Value: bson.A{"$review_count", 0}}}
	mean := func(field string) bson.D {
		return bson.D{{Key: "$cond", Value: bson.A{
			hasReviews,
			bson.D{{Key: "$divide", Value: bson.A{"$ratingTotals." + field, "$review_count"}}},
			0,
		}}}
	}
	zeroIfEmpty := func(field string) bson.D {
		return bson.D{{Key: "$cond", Value: bson.A{hasReviews, "$ratingTotals." + field, 0}}}
	}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "ratingTotals.food", Value: zeroIfEmpty("food")},
			{Key: "ratingTotals.service", Value: zeroIfEmpty("service")},
			{Key: "ratingTotals.ambience", Value: zeroIfEmpty("ambience")},
			{Key: "foodRating", Value: mean("food")},
			{Key: "serviceRating", Value: mean("service")},
			{Key: "ambienceRating", Value: mean("ambience")},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "rating", Value: bson.D{{Key: "$divide", Value: bson.A{
				bson.D{{Key: "$add", Value: bson.A{"$foodRating", "$serviceRating", "$ambienceRating"}}},
				3,
			}}}},
		}}},
	}
}

func (r *MongoBusinessRepo) updateAggregate(ctx context.Context, id string, pipeline mongo.Pipeline) (*models.Business, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b models.Business
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, pipeline, opts).Decode(&b); err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.NotFound("business %s not found", id)
		}
		return nil, fmt.Errorf("failed to update rating aggregate of business %s: %w", id, err)
	}
	return &b, nil
}

// ApplyRatingDelta atomically adds delta to the rating totals and recomputes the means.
func (r *MongoBusinessRepo) ApplyRatingDelta(ctx context.Context, id string, delta models.RatingDelta) (*models.Business, error) {
	return r.updateAggregate(ctx, id, ratingDeltaPipeline(delta, time.Now()))
}

// SetRatingAggregate overwrites totals and review count, recomputing the means.
func (r *MongoBusinessRepo) SetRatingAggregate(ctx context.Context, id string, totals models.RatingTotals, count int) (*models.Business, error) {
	return r.updateAggregate(ctx, id, ratingOverwritePipeline(totals, count, time.Now()))
}
