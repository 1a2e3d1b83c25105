package cron

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"consultdesk/config"
	"consultdesk/services/payment"
	"consultdesk/services/tasks"

	"github.com/hibiken/asynq"
)

// InitReconcileWorker runs the async reconciliation worker in background.
// It re-verifies transactions whose gateway callback may have been lost.
func InitReconcileWorker(paymentSvc payment.PaymentService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePaymentReconcile, handleReconcileTask(paymentSvc))

	// Start async worker with retry logic
	go func() {
		log.Println("[ReconcileWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReconcileWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReconcileWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReconcileTask(paymentSvc payment.PaymentService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ReconcilePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReconcileHandler] invalid payload: %v", err)
			return err
		}

		// The verify protocol is idempotent: a transaction already resolved
		// by the regular callback just returns its recorded outcome here.
		result, err := paymentSvc.Verify(ctx, p.Kind, p.ID, p.Authority, "OK")
		if err != nil {
			if errors.Is(err, payment.ErrGatewayUnavailable) {
				return err // retry later
			}
			if errors.Is(err, payment.ErrTransactionNotFound) {
				log.Printf("[ReconcileHandler] %s %s no longer exists", p.Kind, p.ID)
				return nil
			}
			log.Printf("[ReconcileHandler] reconciliation of %s %s failed: %v", p.Kind, p.ID, err)
			return nil
		}

		log.Printf("[ReconcileHandler] %s %s reconciled: success=%t status=%q",
			p.Kind, p.ID, result.Success, result.Transaction.Status)
		return nil
	}
}
