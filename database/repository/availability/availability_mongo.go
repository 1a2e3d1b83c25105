package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"consultdesk/database"
	"consultdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AvailabilityRepository reads the recurring weekly working windows. The
// availability engine treats these as read-only configuration.
type AvailabilityRepository interface {
	// ListWindows retrieves all configured availability windows.
	ListWindows() ([]models.AvailabilityWindow, error)
}

// MongoAvailabilityRepo implements AvailabilityRepository using MongoDB.
type MongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo creates a new instance of AvailabilityRepository using MongoDB.
func NewMongoAvailabilityRepo() AvailabilityRepository {
	coll := database.MongoClient.Database("consultdesk").Collection("availability_windows")
	return &MongoAvailabilityRepo{coll: coll}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ListWindows retrieves all availability windows.
func (r *MongoAvailabilityRepo) ListWindows() ([]models.AvailabilityWindow, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability windows: %w", err)
	}
	defer cursor.Close(ctx)

	var windows []models.AvailabilityWindow
	if err := cursor.All(ctx, &windows); err != nil {
		return nil, fmt.Errorf("failed to decode availability windows: %w", err)
	}
	return windows, nil
}
