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
	"go.uber.org/zap"
)

// MongoBusinessRepo implements BusinessRepository using MongoDB.
type MongoBusinessRepo struct {
	coll *mongo.Collection
}

// NewMongoBusinessRepo creates a new instance of BusinessRepository using MongoDB.
func NewMongoBusinessRepo(db *mongo.Database, logger *zap.Logger) BusinessRepository {
	repo := &MongoBusinessRepo{coll: db.Collection("businesses")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("business indexes not created", zap.Error(err))
	}
	return repo
}

// Create inserts a new business document.
func (r *MongoBusinessRepo) Create(ctx context.Context, b *models.Business) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	b.SetRatingAggregate(models.RatingTotals{}, 0)
	if b.Images == nil {
		b.Images = []string{}
	}
	if b.Cuisines == nil {
		b.Cuisines = []string{}
	}

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		if repository.IsDuplicateKey(err) {
			return utils.Conflict("you already have a business with this name")
		}
		return fmt.Errorf("failed to create business: %w", err)
	}
	return nil
}

// GetByID retrieves a business by its unique ID.
func (r *MongoBusinessRepo) GetByID(ctx context.Context, id string) (*models.Business, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var b models.Business
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.NotFound("business %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch business with id %s: %w", id, err)
	}
	return &b, nil
}

// GetByIDs retrieves every business whose ID is in ids.
func (r *MongoBusinessRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Business, error) {
	if len(ids) == 0 {
		return []models.Business{}, nil
	}
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch businesses: %w", err)
	}
	defer cursor.Close(ctx)

	businesses := []models.Business{}
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, fmt.Errorf("failed to decode businesses: %w", err)
	}
	return businesses, nil
}

// GetByOwner lists an owner's businesses, newest first.
func (r *MongoBusinessRepo) GetByOwner(ctx context.Context, ownerID string) ([]models.Business, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch businesses of owner %s: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	businesses := []models.Business{}
	if err := cursor.All(ctx, &businesses); err != nil {
		return nil, fmt.Errorf("failed to decode businesses: %w", err)
	}
	return businesses, nil
}

// ExistsByName reports whether the owner already has a business with this name.
func (r *MongoBusinessRepo) ExistsByName(ctx context.Context, ownerID, name string) (bool, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"ownerId": ownerID, "name": name}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check business name: %w", err)
	}
	return n > 0, nil
}

// UpdateProfile writes the owner-editable fields.
func (r *MongoBusinessRepo) UpdateProfile(ctx context.Context, b *models.Business) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	b.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"name":         b.Name,
		"description":  b.Description,
		"email":        b.Email,
		"phone":        b.Phone,
		"address":      b.Address,
		"website":      b.Website,
		"imageUrl":     b.ImageURL,
		"images":       b.Images,
		"cuisines":     b.Cuisines,
		"priceRangeId": b.PriceRangeID,
		"location":     b.Location,
		"updatedAt":    b.UpdatedAt,
	}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": b.ID, "ownerId": b.OwnerID}, update)
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return utils.Conflict("you already have a business with this name")
		}
		return fmt.Errorf("failed to update business with id %s: %w", b.ID, err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFound("business %s not found", b.ID)
	}
	return nil
}

// Delete removes an owner's business.
func (r *MongoBusinessRepo) Delete(ctx context.Context, id, ownerID string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "ownerId": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete business with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return utils.NotFound("business %s not found", id)
	}
	return nil
}
