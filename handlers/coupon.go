package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"consultdesk/models"
	"consultdesk/services/coupon"
)

// CouponHandler serves the coupon price-preview endpoint.
type CouponHandler struct {
	Coupons coupon.Engine
}

func NewCouponHandler(coupons coupon.Engine) *CouponHandler {
	return &CouponHandler{Coupons: coupons}
}

// Validate checks a coupon against an amount and returns the discounted
// price. Read-only: usage is only recorded when a payment verifies.
func (h *CouponHandler) Validate(c *gin.Context) {
	var input struct {
		Code   string  `json:"code" binding:"required"`
		Scope  string  `json:"scope" binding:"required,oneof=bookings orders"`
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	cpn, err := h.Coupons.Validate(c.Request.Context(), input.Code, models.CouponScope(input.Scope), input.Amount, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":       cpn.Code,
		"type":       cpn.Type,
		"value":      cpn.Value,
		"discount":   coupon.Discount(cpn, input.Amount),
		"finalPrice": coupon.FinalPrice(cpn, input.Amount),
	})
}
