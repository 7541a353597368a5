package dealRepo

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

// MongoDealRepo implements DealRepository using MongoDB.
type MongoDealRepo struct {
	coll *mongo.Collection
}

// NewMongoDealRepo creates a new instance of DealRepository using MongoDB.
func NewMongoDealRepo(db *mongo.Database, logger *zap.Logger) DealRepository {
	repo := &MongoDealRepo{coll: db.Collection("deals")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("deal indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoDealRepo) Create(ctx context.Context, deal *models.Deal) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, deal); err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}
	return nil
}

func (r *MongoDealRepo) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var deal models.Deal
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&deal); err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.NotFound("deal %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch deal with id %s: %w", id, err)
	}
	return &deal, nil
}

// Update replaces every field except the identity and ownership fields.
func (r *MongoDealRepo) Update(ctx context.Context, deal *models.Deal) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":          deal.Title,
		"description":    deal.Description,
		"type":           deal.Type,
		"discountValue":  deal.DiscountValue,
		"startDate":      deal.StartDate,
		"endDate":        deal.EndDate,
		"status":         deal.Status,
		"redemptionInfo": deal.RedemptionInfo,
		"appliesTo":      deal.AppliesTo,
		"minimumSpend":   deal.MinimumSpend,
		"updatedAt":      deal.UpdatedAt,
	}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": deal.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update deal with id %s: %w", deal.ID, err)
	}
	if result.MatchedCount == 0 {
		return utils.NotFound("deal %s not found", deal.ID)
	}
	return nil
}

func (r *MongoDealRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete deal with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return utils.NotFound("deal %s not found", id)
	}
	return nil
}

func (r *MongoDealRepo) DeleteByBusiness(ctx context.Context, businessID string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"businessId": businessID}); err != nil {
		return fmt.Errorf("failed to delete deals of business %s: %w", businessID, err)
	}
	return nil
}

func (r *MongoDealRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Deal, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("deal query failed: %w", err)
	}
	defer cursor.Close(ctx)

	deals := []models.Deal{}
	if err := cursor.All(ctx, &deals); err != nil {
		return nil, fmt.Errorf("failed to decode deals: %w", err)
	}
	return deals, nil
}

func (r *MongoDealRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Deal, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	return r.find(ctx, bson.M{"ownerId": ownerID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *MongoDealRepo) ListUpcomingForBusiness(ctx context.Context, businessID string, now time.Time) ([]models.Deal, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"businessId": businessID,
		"status":     bson.M{"$in": []models.DealStatus{models.DealActive, models.DealScheduled}},
		"endDate":    bson.M{"$gte": now},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "startDate", Value: 1}}))
}

// activeFilter builds the filter of live deals for the ranker.
func activeFilter(q ActiveQuery) bson.M {
	filter := bson.M{
		"status":    models.DealActive,
		"startDate": bson.M{"$lte": q.Now},
		"endDate":   bson.M{"$gte": q.Now},
	}
	if q.BusinessIDs != nil {
		filter["businessId"] = bson.M{"$in": q.BusinessIDs}
	}
	if len(q.ExcludeIDs) > 0 {
		filter["id"] = bson.M{"$nin": q.ExcludeIDs}
	}
	return filter
}

func (r *MongoDealRepo) FindActive(ctx context.Context, q ActiveQuery) ([]models.Deal, error) {
	if q.BusinessIDs != nil && len(q.BusinessIDs) == 0 {
		return []models.Deal{}, nil
	}
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	return r.find(ctx, activeFilter(q), opts)
}
