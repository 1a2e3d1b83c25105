package coupon

import (
	"context"
	"fmt"
	"time"

	couponRepo "consultdesk/database/repository/coupon"
	"consultdesk/models"

	"go.uber.org/zap"
)

// Engine validates coupons and records their usage.
type Engine interface {
	// Validate looks up an active coupon for the code and scope and checks it
	// against the order amount and current time. The returned coupon is safe
	// to price with Discount / FinalPrice.
	Validate(ctx context.Context, code string, scope models.CouponScope, orderAmount float64, now time.Time) (*models.Coupon, error)
	// CommitUsage records one use of the coupon. Callers must invoke it at
	// most once per transaction, on the first successful verification only.
	CommitUsage(ctx context.Context, couponID string) error
}

// DefaultEngine is a concrete implementation backed by the coupon repository.
type DefaultEngine struct {
	Repo   couponRepo.CouponRepository
	Logger *zap.Logger
}

func (e *DefaultEngine) Validate(ctx context.Context, code string, scope models.CouponScope, orderAmount float64, now time.Time) (*models.Coupon, error) {
	c, err := e.Repo.GetActiveByCode(code, scope)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, newError(CodeNotFound, fmt.Sprintf("invalid or inactive coupon %q", code))
	}
	if c.StartDate != nil && c.StartDate.After(now) {
		return nil, newError(CodeNotStarted, "coupon not started yet")
	}
	if c.EndDate != nil && c.EndDate.Before(now) {
		return nil, newError(CodeExpired, "coupon expired")
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return nil, newError(CodeExhausted, "coupon usage limit reached")
	}
	if c.MinOrderAmount != nil && orderAmount < *c.MinOrderAmount {
		return nil, newError(CodeBelowMinimum, "order amount below coupon minimum")
	}
	return c, nil
}

func (e *DefaultEngine) CommitUsage(ctx context.Context, couponID string) error {
	applied, err := e.Repo.IncrementUsage(couponID)
	if err != nil {
		return err
	}
	if !applied {
		// The limit filled up between validation and commit. The payment has
		// already settled at this point, so record and move on.
		e.Logger.Warn("coupon usage not recorded, limit reached or coupon missing",
			zap.String("couponId", couponID))
	}
	return nil
}

// Discount computes the discount a coupon yields on the given amount.
func Discount(c *models.Coupon, orderAmount float64) float64 {
	switch c.Type {
	case models.CouponPercentage:
		return orderAmount * c.Value / 100
	case models.CouponFixed:
		return c.Value
	}
	return 0
}

// FinalPrice is the charged amount after applying the coupon, floored at zero.
func FinalPrice(c *models.Coupon, orderAmount float64) float64 {
	price := orderAmount - Discount(c, orderAmount)
	if price < 0 {
		return 0
	}
	return price
}
