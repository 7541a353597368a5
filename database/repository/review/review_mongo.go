package reviewRepo

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

// MongoReviewRepo implements ReviewRepository using MongoDB.
type MongoReviewRepo struct {
	coll *mongo.Collection
}

// NewMongoReviewRepo creates a new instance of ReviewRepository using MongoDB.
func NewMongoReviewRepo(db *mongo.Database, logger *zap.Logger) ReviewRepository {
	repo := &MongoReviewRepo{coll: db.Collection("reviews")}
	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("review indexes not created", zap.Error(err))
	}
	return repo
}

func (r *MongoReviewRepo) Create(ctx context.Context, review *models.Review) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	if review.Images == nil {
		review.Images = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, review); err != nil {
		if repository.IsDuplicateKey(err) {
			return utils.Conflict("you have already reviewed this business")
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *MongoReviewRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	var review models.Review
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&review); err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.NotFound("review %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch review with id %s: %w", id, err)
	}
	return &review, nil
}

func (r *MongoReviewRepo) Update(ctx context.Context, review *models.Review, prev models.Review) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":          review.Title,
		"text":           review.Text,
		"foodRating":     review.FoodRating,
		"serviceRating":  review.ServiceRating,
		"ambienceRating": review.AmbienceRating,
		"rating":         review.Rating,
		"images":         review.Images,
		"updatedAt":      review.UpdatedAt,
	}}
	filter := bson.M{
		"id":             review.ID,
		"foodRating":     prev.FoodRating,
		"serviceRating":  prev.ServiceRating,
		"ambienceRating": prev.AmbienceRating,
	}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update review with id %s: %w", review.ID, err)
	}
	if result.MatchedCount > 0 {
		return nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"id": review.ID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check review with id %s: %w", review.ID, err)
	}
	if n == 0 {
		return utils.NotFound("review %s not found", review.ID)
	}
	return utils.Conflict("review %s was changed by another request; reload and retry", review.ID)
}

func (r *MongoReviewRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return utils.NotFound("review %s not found", id)
	}
	return nil
}

// listFilter builds the Mongo filter of a review listing.
func listFilter(c ListCriteria) bson.M {
	filter := bson.M{}
	if c.BusinessID != "" {
		filter["businessId"] = c.BusinessID
	}
	if c.CustomerID != "" {
		filter["customerId"] = c.CustomerID
	}
	rating := bson.M{}
	if c.MinRating > 0 {
		rating["$gte"] = c.MinRating
	}
	if c.MaxRating > 0 {
		rating["$lte"] = c.MaxRating
	}
	if len(rating) > 0 {
		filter["rating"] = rating
	}
	return filter
}

// SortField maps a requested sort key to a stored field, defaulting to createdAt.
func SortField(sortBy string) string {
	switch sortBy {
	case "rating", "upvotes":
		return sortBy
	}
	return "createdAt"
}

func (r *MongoReviewRepo) List(ctx context.Context, c ListCriteria) ([]models.Review, int64, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	filter := listFilter(c)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	direction := -1
	if c.Ascending {
		direction = 1
	}
	page, size := repository.NormalizePage(c.Page, c.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: SortField(c.SortBy), Value: direction}, {Key: "id", Value: 1}}).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("review listing failed: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, total, nil
}

func (r *MongoReviewRepo) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"customerId": customerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews of customer %s: %w", customerID, err)
	}
	return int(n), nil
}

func (r *MongoReviewRepo) FindByCustomerMinRating(ctx context.Context, customerID string, minRating float64) ([]models.Review, error) {
	ctx, cancel := repository.NewContext(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"customerId": customerID, "rating": bson.M{"$gte": minRating}}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews of customer %s: %w", customerID, err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

// ForEachByBusiness walks the cursor without loading every review into memory.
func (r *MongoReviewRepo) ForEachByBusiness(ctx context.Context, businessID string, fn func(models.Review) error) error {
	ctx, cancel := repository.NewContext(ctx, 2*time.Minute)
	defer cancel()

	projection := bson.M{"id": 1, "businessId": 1, "customerId": 1, "foodRating": 1, "serviceRating": 1, "ambienceRating": 1, "rating": 1}
	cursor, err := r.coll.Find(ctx, bson.M{"businessId": businessID}, options.Find().SetProjection(projection))
	if err != nil {
		return fmt.Errorf("failed to scan reviews of business %s: %w", businessID, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var review models.Review
		if err := cursor.Decode(&review); err != nil {
			return fmt.Errorf("failed to decode review: %w", err)
		}
		if err := fn(review); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func (r *MongoReviewRepo) IncrementUpvotes(ctx context.Context, id string, delta int) (int, error) {
	ctx, cancel := repository.NewContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	if delta < 0 {
		filter["upvotes"] = bson.M{"$gte": -delta}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var review models.Review
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"upvotes": delta}}, opts).Decode(&review)
	if err == nil {
		return review.Upvotes, nil
	}
	if !repository.IsNotFound(err) {
		return 0, fmt.Errorf("failed to update upvotes of review %s: %w", id, err)
	}

	// Either the review is gone or the counter is already at its floor.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return 0, getErr
	}
	return current.Upvotes, nil
}
