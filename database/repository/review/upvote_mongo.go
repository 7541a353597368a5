package reviewRepo

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

// MongoUpvoteRepo implements UpvoteRepository using MongoDB.
type MongoUpvoteRepo struct {
	coll *mongo.Collection
}

func NewMongoUpvoteRepo(db *mongo.Database, logger *zap.Logger) UpvoteRepository {
	repo := &MongoUpvoteRepo{coll: db.Collection("review_upvotes")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("upvote indexes not created", zap.Error(err))
	}
	return repo
}

// Insert relies on the unique (reviewId, customerId) index: a duplicate means
// the vote already existed.
func (r *MongoUpvoteRepo) Insert(ctx context.Context, upvote models.ReviewUpvote) (bool, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, upvote); err != nil {
		if repository.IsDuplicateKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record upvote: %w", err)
	}
	return true, nil
}

func (r *MongoUpvoteRepo) Delete(ctx context.Context, reviewID, customerID string) (bool, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"reviewId": reviewID, "customerId": customerID})
	if err != nil {
		return false, fmt.Errorf("failed to remove upvote: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *MongoUpvoteRepo) Exists(ctx context.Context, reviewID, customerID string) (bool, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"reviewId": reviewID, "customerId": customerID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check upvote: %w", err)
	}
	return n > 0, nil
}

func (r *MongoUpvoteRepo) DeleteByReview(ctx context.Context, reviewID string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"reviewId": reviewID}); err != nil {
		return fmt.Errorf("failed to remove upvotes of review %s: %w", reviewID, err)
	}
	return nil
}
