package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"consultdesk/services/calendar"
	"consultdesk/services/coupon"
	"consultdesk/services/payment"
)

// respondError maps service errors onto HTTP responses. Validation failures
// carry their code so clients can show a specific message; everything
// unexpected collapses to a 500 with a generic body.
func respondError(c *gin.Context, err error) {
	logger := getLogger(c)

	var couponErr *coupon.Error
	if errors.As(err, &couponErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": couponErr.Message, "code": string(couponErr.Code)})
		return
	}

	var gatewayErr *payment.GatewayError
	if errors.As(err, &gatewayErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": gatewayErr.Message, "code": gatewayErr.Code})
		return
	}

	var transitionErr *payment.TransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
		return
	}

	switch {
	case errors.Is(err, payment.ErrTransactionNotFound), errors.Is(err, calendar.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, payment.ErrMissingAuthority):
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authority parameter"})
	case errors.Is(err, payment.ErrMissingConfiguration):
		logger.Error("Gateway configuration missing", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment gateway not configured"})
	case errors.Is(err, payment.ErrGatewayUnavailable):
		logger.Error("Gateway unreachable", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
