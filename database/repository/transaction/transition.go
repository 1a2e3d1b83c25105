package transactionRepo

import (
	"fmt"
	"time"

	"consultdesk/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Transition performs the compare-and-set status flip that gates every
// verification side effect. The filter matches only while the record is
// still in the expected status, so of two concurrent verify deliveries at
// most one observes MatchedCount == 1 and applies the success effects.
func (r *MongoTransactionRepo) Transition(
	kind models.TransactionKind,
	id string,
	from, to models.TransactionStatus,
	set bson.M,
) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if set == nil {
		set = bson.M{}
	}
	set["status"] = to
	set["updated_at"] = time.Now()

	filter := bson.M{"kind": kind, "id": id, "status": from}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to transition %s %s from %q to %q: %w", kind, id, from, to, err)
	}
	return result.MatchedCount == 1, nil
}
