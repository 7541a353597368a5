package reviewRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes(coll *mongo.Collection, indexModels []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create %s indexes: %w", coll.Name(), err)
	}
	return nil
}

// ensureIndexes creates indexes for frequently used fields in queries.
func (r *MongoReviewRepo) ensureIndexes() error {
	return createIndexes(r.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		// One review per customer per business.
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "businessId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "businessId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "rating", Value: -1}}},
	})
}

func (r *MongoUpvoteRepo) ensureIndexes() error {
	return createIndexes(r.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "reviewId", Value: 1}, {Key: "customerId", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
}

func (r *MongoResponseRepo) ensureIndexes() error {
	return createIndexes(r.coll, []mongo.IndexModel{
		{Keys: bson.D{{Key: "reviewId", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
}
