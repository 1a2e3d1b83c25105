package couponRepo

import "consultdesk/models"

// CouponRepository defines methods for coupon data access.
type CouponRepository interface {
	// GetActiveByCode retrieves an active coupon matching code and scope.
	// Returns (nil, nil) when no such coupon exists.
	GetActiveByCode(code string, scope models.CouponScope) (*models.Coupon, error)
	// GetByID retrieves a coupon by its unique ID.
	GetByID(id string) (*models.Coupon, error)
	// IncrementUsage adds one use to the coupon, guarded against exceeding
	// the usage limit. Reports whether the increment was applied.
	IncrementUsage(id string) (bool, error)
}
