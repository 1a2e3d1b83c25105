package tasks

import (
	"encoding/json"
	"time"

	"consultdesk/models"

	"github.com/hibiken/asynq"
)

const TypePaymentReconcile = "payment:reconcile"

// ReconcilePayload identifies a pending transaction to re-verify in case
// the gateway callback never arrived.
type ReconcilePayload struct {
	Kind      models.TransactionKind `json:"kind"`
	ID        string                 `json:"id"`
	Authority string                 `json:"authority"`
}

func NewReconcileTask(payload ReconcilePayload, delay time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePaymentReconcile, b)
	opts := []asynq.Option{asynq.ProcessIn(delay)}

	return task, opts, nil
}

// AsynqReconciler enqueues reconciliation tasks. It satisfies the payment
// service's VerifyScheduler port.
type AsynqReconciler struct {
	client *asynq.Client
}

func NewAsynqReconciler(redisAddr, redisPassword string, redisDB int) *AsynqReconciler {
	return &AsynqReconciler{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
			DB:       redisDB,
		}),
	}
}

func (r *AsynqReconciler) ScheduleVerify(kind models.TransactionKind, id, authority string, delay time.Duration) error {
	task, opts, err := NewReconcileTask(ReconcilePayload{Kind: kind, ID: id, Authority: authority}, delay)
	if err != nil {
		return err
	}
	_, err = r.client.Enqueue(task, opts...)
	return err
}
