package couponRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultdesk/database"
	"consultdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCouponRepo implements CouponRepository using MongoDB.
type MongoCouponRepo struct {
	coll *mongo.Collection
}

// NewMongoCouponRepo creates a new instance of CouponRepository using MongoDB.
func NewMongoCouponRepo() CouponRepository {
	coll := database.MongoClient.Database("consultdesk").Collection("coupons")
	repo := &MongoCouponRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoCouponRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetActiveByCode retrieves an active coupon for the given code and scope.
func (r *MongoCouponRepo) GetActiveByCode(code string, scope models.CouponScope) (*models.Coupon, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"code": code, "isActive": true, "appliesTo": scope}
	var coupon models.Coupon
	err := r.coll.FindOne(ctx, filter).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch coupon %q: %w", code, err)
	}
	return &coupon, nil
}

// GetByID retrieves a coupon by its unique ID.
func (r *MongoCouponRepo) GetByID(id string) (*models.Coupon, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var coupon models.Coupon
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch coupon with id %s: %w", id, err)
	}
	return &coupon, nil
}

// IncrementUsage atomically adds one use. The filter keeps usedCount below
// usageLimit when a limit is set, so concurrent commits cannot overshoot it.
func (r *MongoCouponRepo) IncrementUsage(id string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id": id,
		"$or": bson.A{
			bson.M{"usageLimit": bson.M{"$exists": false}},
			bson.M{"usageLimit": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$usedCount", "$usageLimit"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"usedCount": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to increment usage for coupon %s: %w", id, err)
	}
	return result.MatchedCount == 1, nil
}
