package transactionRepo

import (
	"consultdesk/models"

	"go.mongodb.org/mongo-driver/bson"
)

// TransactionRepository defines methods for transaction data access.
type TransactionRepository interface {
	// Create inserts a new transaction record.
	Create(tx *models.Transaction) error
	// GetByID retrieves a transaction of the given kind by its unique ID.
	GetByID(kind models.TransactionKind, id string) (*models.Transaction, error)
	// GetByAuthority retrieves a transaction by its gateway authority token.
	GetByAuthority(kind models.TransactionKind, authority string) (*models.Transaction, error)
	// SetFields applies a partial $set update without touching the status.
	SetFields(kind models.TransactionKind, id string, fields bson.M) error
	// Transition atomically moves the transaction from one status to another,
	// applying extra field updates in the same write. It reports whether this
	// call won the transition; false means the record was no longer in the
	// expected status.
	Transition(kind models.TransactionKind, id string, from, to models.TransactionStatus, set bson.M) (bool, error)
}
