package dealRepo

import (
	"context"
	"fmt"
	"time"

	"dinewise/database/repository"
	"dinewise/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ActivateDue moves SCHEDULED deals with start <= now <= end to ACTIVE.
func (r *MongoDealRepo) ActivateDue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := repository.NewContext(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{
		"status":    models.DealScheduled,
		"startDate": bson.M{"$lte": now},
		"endDate":   bson.M{"$gte": now},
	}
	update := bson.M{"$set": bson.M{"status": models.DealActive, "updatedAt": now}}
	result, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to activate scheduled deals: %w", err)
	}
	return result.ModifiedCount, nil
}

// ExpireDue moves ACTIVE or SCHEDULED deals with end < now to EXPIRED.
func (r *MongoDealRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := repository.NewContext(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{
		"status":  bson.M{"$in": []models.DealStatus{models.DealActive, models.DealScheduled}},
		"endDate": bson.M{"$lt": now},
	}
	update := bson.M{"$set": bson.M{"status": models.DealExpired, "updatedAt": now}}
	result, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire deals: %w", err)
	}
	return result.ModifiedCount, nil
}
