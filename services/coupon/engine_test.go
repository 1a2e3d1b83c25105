package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"consultdesk/models"
)

type fakeCouponRepo struct {
	coupons  map[string]*models.Coupon
	applied  bool
	incCalls int
}

func (r *fakeCouponRepo) GetActiveByCode(code string, scope models.CouponScope) (*models.Coupon, error) {
	c, ok := r.coupons[code]
	if !ok || c.AppliesTo != scope {
		return nil, nil
	}
	return c, nil
}

func (r *fakeCouponRepo) GetByID(id string) (*models.Coupon, error) {
	for _, c := range r.coupons {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCouponRepo) IncrementUsage(id string) (bool, error) {
	r.incCalls++
	return r.applied, nil
}

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func newEngine(repo *fakeCouponRepo) *DefaultEngine {
	return &DefaultEngine{Repo: repo, Logger: zap.NewNop()}
}

func TestValidateHappyPath(t *testing.T) {
	repo := &fakeCouponRepo{coupons: map[string]*models.Coupon{
		"SAVE20": {ID: "c-1", Code: "SAVE20", Type: models.CouponPercentage, Value: 20, AppliesTo: models.ScopeBookings},
	}}
	engine := newEngine(repo)

	c, err := engine.Validate(context.Background(), "SAVE20", models.ScopeBookings, 100000, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "c-1", c.ID)
}

func TestValidateUnknownCode(t *testing.T) {
	engine := newEngine(&fakeCouponRepo{coupons: map[string]*models.Coupon{}})

	_, err := engine.Validate(context.Background(), "NOPE", models.ScopeBookings, 100000, time.Now())
	var couponErr *Error
	require.ErrorAs(t, err, &couponErr)
	assert.Equal(t, CodeNotFound, couponErr.Code)
}

func TestValidateScopeMismatch(t *testing.T) {
	repo := &fakeCouponRepo{coupons: map[string]*models.Coupon{
		"SAVE20": {ID: "c-1", Code: "SAVE20", AppliesTo: models.ScopeOrders},
	}}
	engine := newEngine(repo)

	// A coupon scoped to orders is invisible to booking validation.
	_, err := engine.Validate(context.Background(), "SAVE20", models.ScopeBookings, 100000, time.Now())
	var couponErr *Error
	require.ErrorAs(t, err, &couponErr)
	assert.Equal(t, CodeNotFound, couponErr.Code)
}

func TestValidateDateWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeCouponRepo{coupons: map[string]*models.Coupon{
		"EARLY": {ID: "c-1", AppliesTo: models.ScopeBookings, StartDate: timePtr(now.Add(time.Hour))},
		"LATE":  {ID: "c-2", AppliesTo: models.ScopeBookings, EndDate: timePtr(now.Add(-time.Hour))},
	}}
	engine := newEngine(repo)

	_, err := engine.Validate(context.Background(), "EARLY", models.ScopeBookings, 1000, now)
	var couponErr *Error
	require.ErrorAs(t, err, &couponErr)
	assert.Equal(t, CodeNotStarted, couponErr.Code)

	_, err = engine.Validate(context.Background(), "LATE", models.ScopeBookings, 1000, now)
	require.ErrorAs(t, err, &couponErr)
	assert.Equal(t, CodeExpired, couponErr.Code)
}

func TestValidateExhausted(t *testing.T) {
	repo := &fakeCouponRepo{coupons: map[string]*models.Coupon{
		"ONCE": {ID: "c-1", AppliesTo: models.ScopeBookings, UsageLimit: intPtr(1), UsedCount: 1},
	}}
	engine := newEngine(repo)

	_, err := engine.Validate(context.Background(), "ONCE", models.ScopeBookings, 1000, time.Now())
	var couponErr *Error
	require.ErrorAs(t, err, &couponErr)
	assert.Equal(t, CodeExhausted, couponErr.Code)
}

func TestValidateBelowMinimum(t *testing.T) {
	repo := &fakeCouponRepo{coupons: map[string]*models.Coupon{
		"BIG": {ID: "c-1", AppliesTo: models.ScopeOrders, MinOrderAmount: floatPtr(500000)},
	}}
	engine := newEngine(repo)

	_, err := engine.Validate(context.Background(), "BIG", models.ScopeOrders, 499999, time.Now())
	var couponErr *Error
	require.ErrorAs(t, err, &couponErr)
	assert.Equal(t, CodeBelowMinimum, couponErr.Code)
}

func TestValidateUnlimitedUsage(t *testing.T) {
	repo := &fakeCouponRepo{coupons: map[string]*models.Coupon{
		"FOREVER": {ID: "c-1", AppliesTo: models.ScopeBookings, UsedCount: 100000},
	}}
	engine := newEngine(repo)

	_, err := engine.Validate(context.Background(), "FOREVER", models.ScopeBookings, 1000, time.Now())
	assert.NoError(t, err)
}

func TestCommitUsageToleratesFilledLimit(t *testing.T) {
	repo := &fakeCouponRepo{applied: false}
	engine := newEngine(repo)

	// The payment already settled; a lost increment is logged, not fatal.
	err := engine.CommitUsage(context.Background(), "c-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.incCalls)
}

func TestDiscountAndFinalPrice(t *testing.T) {
	percent := &models.Coupon{Type: models.CouponPercentage, Value: 20}
	assert.Equal(t, float64(20000), Discount(percent, 100000))
	assert.Equal(t, float64(80000), FinalPrice(percent, 100000))

	fixed := &models.Coupon{Type: models.CouponFixed, Value: 150}
	assert.Equal(t, float64(150), Discount(fixed, 1000))
	assert.Equal(t, float64(850), FinalPrice(fixed, 1000))

	// A fixed discount above the amount floors at zero, never negative.
	assert.Equal(t, float64(0), FinalPrice(fixed, 100))
}
