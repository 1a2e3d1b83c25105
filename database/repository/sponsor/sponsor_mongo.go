package sponsorRepo

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

// SponsorRepository defines methods for sponsor data access.
type SponsorRepository interface {
	// GetByEmail retrieves a sponsor by email. Returns (nil, nil) when absent.
	GetByEmail(email string) (*models.Sponsor, error)
	// Create inserts a new sponsor record.
	Create(sponsor *models.Sponsor) error
}

// MongoSponsorRepo implements SponsorRepository using MongoDB.
type MongoSponsorRepo struct {
	coll *mongo.Collection
}

// NewMongoSponsorRepo creates a new instance of SponsorRepository using MongoDB.
func NewMongoSponsorRepo() SponsorRepository {
	coll := database.MongoClient.Database("consultdesk").Collection("sponsors")
	repo := &MongoSponsorRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoSponsorRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByEmail retrieves a sponsor by email address.
func (r *MongoSponsorRepo) GetByEmail(email string) (*models.Sponsor, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var sponsor models.Sponsor
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&sponsor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch sponsor by email: %w", err)
	}
	return &sponsor, nil
}

// Create inserts a new sponsor document.
func (r *MongoSponsorRepo) Create(sponsor *models.Sponsor) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	sponsor.CreatedAt = now
	sponsor.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, sponsor)
	if err != nil {
		return fmt.Errorf("failed to create sponsor: %w", err)
	}
	return nil
}
