package businessRepo

import (
	"context"
	"fmt"
	"time"

	"dinewise/database/repository"
	"dinewise/models"
	"dinewise/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoPriceRangeRepo implements PriceRangeRepository using MongoDB.
type MongoPriceRangeRepo struct {
	coll *mongo.Collection
}

func NewMongoPriceRangeRepo(db *mongo.Database, logger *zap.Logger) PriceRangeRepository {
	repo := &MongoPriceRangeRepo{coll: db.Collection("price_ranges")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("price range indexes not created", zap.Error(err))
	}
	return repo
}

// List returns every price range ordered by lower bound.
func (r *MongoPriceRangeRepo) List(ctx context.Context) ([]models.PriceRange, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "lowerBound", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list price ranges: %w", err)
	}
	defer cursor.Close(ctx)

	ranges := []models.PriceRange{}
	if err := cursor.All(ctx, &ranges); err != nil {
		return nil, fmt.Errorf("failed to decode price ranges: %w", err)
	}
	return ranges, nil
}

// Create inserts a price range, assigning an ID when absent.
func (r *MongoPriceRangeRepo) Create(ctx context.Context, pr *models.PriceRange) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if pr.ID == "" {
		pr.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, pr); err != nil {
		if repository.IsDuplicateKey(err) {
			return utils.Conflict("price range %.2f-%.2f already exists", pr.LowerBound, pr.UpperBound)
		}
		return fmt.Errorf("failed to create price range: %w", err)
	}
	return nil
}
