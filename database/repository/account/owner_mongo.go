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
	"go.uber.org/zap"
)

// MongoOwnerRepo implements OwnerRepository using MongoDB.
type MongoOwnerRepo struct {
	coll *mongo.Collection
}

func NewMongoOwnerRepo(db *mongo.Database, logger *zap.Logger) OwnerRepository {
	repo := &MongoOwnerRepo{coll: db.Collection("owners")}
	if err := ensureAccountIndexes(repo.coll); err != nil {
		logger.Warn("owner indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoOwnerRepo) Create(ctx context.Context, o *models.Owner) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	o.Email = strings.ToLower(o.Email)
	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		if repository.IsDuplicateKey(err) {
			return utils.Conflict("an owner with email %s already exists", o.Email)
		}
		return fmt.Errorf("failed to create owner: %w", err)
	}
	return nil
}

func (r *MongoOwnerRepo) findOne(ctx context.Context, filter bson.M, what string) (*models.Owner, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var o models.Owner
	if err := r.coll.FindOne(ctx, filter).Decode(&o); err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.NotFound("owner %s not found", what)
		}
		return nil, fmt.Errorf("failed to fetch owner %s: %w", what, err)
	}
	return &o, nil
}

func (r *MongoOwnerRepo) GetByID(ctx context.Context, id string) (*models.Owner, error) {
	return r.findOne(ctx, bson.M{"id": id}, id)
}

func (r *MongoOwnerRepo) GetByEmail(ctx context.Context, email string) (*models.Owner, error) {
	email = strings.ToLower(email)
	return r.findOne(ctx, bson.M{"email": email}, email)
}
