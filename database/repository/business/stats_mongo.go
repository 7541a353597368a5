package businessRepo

import (
	"context"
	"fmt"
	"time"

	"dinewise/database/repository"
	"dinewise/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoStatsRepo implements StatsRepository using MongoDB.
type MongoStatsRepo struct {
	coll *mongo.Collection
}

func NewMongoStatsRepo(db *mongo.Database, logger *zap.Logger) StatsRepository {
	repo := &MongoStatsRepo{coll: db.Collection("business_stats")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("business stats indexes not created", zap.Error(err))
	}
	return repo
}

// bucketIncrement builds the $inc document for a histogram change, skipping
// zero entries and stars outside 1-5.
func bucketIncrement(delta map[int]int) bson.M {
	inc := bson.M{}
	for star, n := range delta {
		field := models.StarField(star)
		if field == "" || n == 0 {
			continue
		}
		inc[field] = n
	}
	return inc
}

// IncrementBuckets adds delta[star] to each bucket in one $inc, upserting the document.
func (r *MongoStatsRepo) IncrementBuckets(ctx context.Context, businessID string, delta map[int]int) error {
	inc := bucketIncrement(delta)
	if len(inc) == 0 {
		return nil
	}
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$inc":         inc,
		"$setOnInsert": bson.M{"businessId": businessID},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, bson.M{"businessId": businessID}, update, opts); err != nil {
		return fmt.Errorf("failed to update stats of business %s: %w", businessID, err)
	}
	return nil
}

// Get returns the histogram; a business with no document gets all-zero counts.
func (r *MongoStatsRepo) Get(ctx context.Context, businessID string) (*models.BusinessStats, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	stats := models.BusinessStats{BusinessID: businessID}
	if err := r.coll.FindOne(ctx, bson.M{"businessId": businessID}).Decode(&stats); err != nil {
		if repository.IsNotFound(err) {
			return &models.BusinessStats{BusinessID: businessID}, nil
		}
		return nil, fmt.Errorf("failed to fetch stats of business %s: %w", businessID, err)
	}
	return &stats, nil
}

// Replace overwrites the histogram.
func (r *MongoStatsRepo) Replace(ctx context.Context, stats models.BusinessStats) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"businessId": stats.BusinessID}, stats, opts); err != nil {
		return fmt.Errorf("failed to replace stats of business %s: %w", stats.BusinessID, err)
	}
	return nil
}

// Delete removes the histogram of a deleted business.
func (r *MongoStatsRepo) Delete(ctx context.Context, businessID string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"businessId": businessID}); err != nil {
		return fmt.Errorf("failed to delete stats of business %s: %w", businessID, err)
	}
	return nil
}
