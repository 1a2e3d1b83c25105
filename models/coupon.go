package models

import "time"

// CouponType is the discount model of a coupon.
type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

// CouponScope restricts which transaction kinds a coupon applies to.
type CouponScope string

const (
	ScopeBookings CouponScope = "bookings"
	ScopeOrders   CouponScope = "orders"
)

// Coupon is a discount code. UsedCount increments exactly once per
// transaction that verifies successfully while referencing the coupon;
// duplicate verifications of the same transaction never increment it again.
type Coupon struct {
	ID             string      `bson:"id" json:"id"`
	Code           string      `bson:"code" json:"code"`
	Type           CouponType  `bson:"type" json:"type"`
	Value          float64     `bson:"value" json:"value"`
	UsageLimit     *int        `bson:"usageLimit,omitempty" json:"usageLimit,omitempty"` // nil = unlimited
	UsedCount      int         `bson:"usedCount" json:"usedCount"`
	MinOrderAmount *float64    `bson:"minOrderAmount,omitempty" json:"minOrderAmount,omitempty"`
	StartDate      *time.Time  `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate        *time.Time  `bson:"endDate,omitempty" json:"endDate,omitempty"`
	AppliesTo      CouponScope `bson:"appliesTo" json:"appliesTo"`
	Active         bool        `bson:"isActive" json:"isActive"`
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `bson:"updated_at" json:"updated_at"`
}
