package settingsRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultdesk/database"
	"consultdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SettingsRepository reads the tenant-level gateway settings record.
type SettingsRepository interface {
	// Get retrieves the settings record. Returns (nil, nil) when none exists,
	// in which case environment configuration is the only source.
	Get() (*models.GatewaySettings, error)
}

// MongoSettingsRepo implements SettingsRepository using MongoDB.
type MongoSettingsRepo struct {
	coll *mongo.Collection
}

// NewMongoSettingsRepo creates a new instance of SettingsRepository using MongoDB.
func NewMongoSettingsRepo() SettingsRepository {
	coll := database.MongoClient.Database("consultdesk").Collection("settings")
	return &MongoSettingsRepo{coll: coll}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// Get retrieves the single settings document.
func (r *MongoSettingsRepo) Get() (*models.GatewaySettings, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var settings models.GatewaySettings
	err := r.coll.FindOne(ctx, bson.M{}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch gateway settings: %w", err)
	}
	return &settings, nil
}
