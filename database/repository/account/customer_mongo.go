package accountRepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dinewise/database/repository"
	"dinewise/models"
	"dinewise/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoCustomerRepo implements CustomerRepository using MongoDB.
type MongoCustomerRepo struct {
	coll *mongo.Collection
}

func NewMongoCustomerRepo(db *mongo.Database, logger *zap.Logger) CustomerRepository {
	repo := &MongoCustomerRepo{coll: db.Collection("customers")}
	if err := ensureAccountIndexes(repo.coll); err != nil {
		logger.Warn("customer indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoCustomerRepo) Create(ctx context.Context, c *models.Customer) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	c.Email = strings.ToLower(c.Email)
	if c.PreferredCuisines == nil {
		c.PreferredCuisines = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		if repository.IsDuplicateKey(err) {
			return utils.Conflict("a customer with email %s already exists", c.Email)
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *MongoCustomerRepo) findOne(ctx context.Context, filter bson.M, what string) (*models.Customer, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var c models.Customer
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.NotFound("customer %s not found", what)
		}
		return nil, fmt.Errorf("failed to fetch customer %s: %w", what, err)
	}
	return &c, nil
}

func (r *MongoCustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	return r.findOne(ctx, bson.M{"id": id}, id)
}

func (r *MongoCustomerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	email = strings.ToLower(email)
	return r.findOne(ctx, bson.M{"email": email}, email)
}

func (r *MongoCustomerRepo) UpdateProfile(ctx context.Context, c *models.Customer) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"firstName":    c.FirstName,
		"lastName":     c.LastName,
		"bio":          c.Bio,
		"profileImage": c.ProfileImage,
		"updatedAt":    c.UpdatedAt,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": c.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update customer %s: %w", c.ID, err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFound("customer %s not found", c.ID)
	}
	return nil
}

func (r *MongoCustomerRepo) UpdatePreferences(ctx context.Context, id string, cuisines []string, suburb string) (*models.Customer, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if cuisines == nil {
		cuisines = []string{}
	}
	update := bson.M{"$set": bson.M{
		"preferredCuisines": cuisines,
		"preferredSuburb":   suburb,
		"updatedAt":         time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Customer
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&c); err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.NotFound("customer %s not found", id)
		}
		return nil, fmt.Errorf("failed to update preferences of customer %s: %w", id, err)
	}
	return &c, nil
}

// IncrementReviewCount uses a floor guard on decrement so concurrent deletes
// cannot drive the counter negative.
func (r *MongoCustomerRepo) IncrementReviewCount(ctx context.Context, id string, delta int) error {
	if delta == 0 {
		return nil
	}
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	if delta < 0 {
		filter["review_count"] = bson.M{"$gte": -delta}
	}
	if _, err := r.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"review_count": delta}}); err != nil {
		return fmt.Errorf("failed to update review count of customer %s: %w", id, err)
	}
	return nil
}

func (r *MongoCustomerRepo) SetReviewCount(ctx context.Context, id string, count int) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"review_count": count}})
	if err != nil {
		return fmt.Errorf("failed to set review count of customer %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFound("customer %s not found", id)
	}
	return nil
}

func (r *MongoCustomerRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete customer %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return utils.NotFound("customer %s not found", id)
	}
	return nil
}
