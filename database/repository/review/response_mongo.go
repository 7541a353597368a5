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

// MongoResponseRepo implements ResponseRepository using MongoDB.
type MongoResponseRepo struct {
	coll *mongo.Collection
}

func NewMongoResponseRepo(db *mongo.Database, logger *zap.Logger) ResponseRepository {
	repo := &MongoResponseRepo{coll: db.Collection("review_responses")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("review response indexes not created", zap.Error(err))
	}
	return repo
}

// Upsert keeps the original id and createdAt when a response is rewritten.
func (r *MongoResponseRepo) Upsert(ctx context.Context, response *models.ReviewResponse) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"text": response.Text, "updatedAt": response.UpdatedAt},
		"$setOnInsert": bson.M{
			"id":         response.ID,
			"reviewId":   response.ReviewID,
			"businessId": response.BusinessID,
			"createdAt":  response.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"reviewId": response.ReviewID}, update, opts).Decode(response); err != nil {
		return fmt.Errorf("failed to save response to review %s: %w", response.ReviewID, err)
	}
	return nil
}

func (r *MongoResponseRepo) GetByReview(ctx context.Context, reviewID string) (*models.ReviewResponse, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var response models.ReviewResponse
	if err := r.coll.FindOne(ctx, bson.M{"reviewId": reviewID}).Decode(&response); err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch response to review %s: %w", reviewID, err)
	}
	return &response, nil
}

func (r *MongoResponseRepo) DeleteByReview(ctx context.Context, reviewID string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"reviewId": reviewID}); err != nil {
		return fmt.Errorf("failed to delete response to review %s: %w", reviewID, err)
	}
	return nil
}
