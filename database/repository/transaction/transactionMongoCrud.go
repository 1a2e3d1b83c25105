// File: database/repository/transaction/transactionMongoCrud.go
package transactionRepo

import (
	"errors"
	"fmt"
	"time"

	"consultdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new transaction document.
func (r *MongoTransactionRepo) Create(tx *models.Transaction) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to create %s transaction: %w", tx.Kind, err)
	}
	return nil
}

// GetByID retrieves a transaction by kind and id. Returns (nil, nil) when no
// record exists.
func (r *MongoTransactionRepo) GetByID(kind models.TransactionKind, id string) (*models.Transaction, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var tx models.Transaction
	err := r.coll.FindOne(ctx, bson.M{"kind": kind, "id": id}).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch %s %s: %w", kind, id, err)
	}
	return &tx, nil
}

// GetByAuthority retrieves a transaction by its gateway authority token.
func (r *MongoTransactionRepo) GetByAuthority(kind models.TransactionKind, authority string) (*models.Transaction, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var tx models.Transaction
	err := r.coll.FindOne(ctx, bson.M{"kind": kind, "authority": authority}).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch %s by authority: %w", kind, err)
	}
	return &tx, nil
}

// SetFields applies a partial update to a transaction document.
func (r *MongoTransactionRepo) SetFields(kind models.TransactionKind, id string, fields bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	fields["updated_at"] = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"kind": kind, "id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", kind, id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s with id %s not found", kind, id)
	}
	return nil
}
