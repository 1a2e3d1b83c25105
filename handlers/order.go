package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"consultdesk/models"
	"consultdesk/services/payment"
)

// OrderHandler serves the sponsorship order endpoints.
type OrderHandler struct {
	Payments payment.PaymentService
}

func NewOrderHandler(payments payment.PaymentService) *OrderHandler {
	return &OrderHandler{Payments: payments}
}

// Create registers a sponsorship order and initiates its payment. The
// sponsor is resolved from sponsorId when given, otherwise matched by email
// or created from the contact fields.
func (h *OrderHandler) Create(c *gin.Context) {
	logger := getLogger(c)
	var input struct {
		PackageID      string  `json:"packageId" binding:"required"`
		Amount         float64 `json:"amount" binding:"required,gt=0"`
		Price          string  `json:"price"`
		Quantity       string  `json:"quantity"`
		Note           string  `json:"note"`
		InternalNote   string  `json:"internalNote"`
		SponsorID      string  `json:"sponsorId"`
		Name           string  `json:"name"`
		Email          string  `json:"email"`
		Phone          string  `json:"phone"`
		CompanyName    string  `json:"companyName"`
		CompanyWebsite string  `json:"companyWebsite"`
		InstagramID    string  `json:"instagramId"`
		CouponCode     string  `json:"couponCode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.SponsorID == "" && input.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "either sponsorId or email is required"})
		return
	}

	result, err := h.Payments.InitiateOrder(c.Request.Context(), payment.OrderInput{
		PackageID:      input.PackageID,
		Amount:         input.Amount,
		Price:          input.Price,
		Quantity:       input.Quantity,
		Note:           input.Note,
		InternalNote:   input.InternalNote,
		SponsorID:      input.SponsorID,
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		CompanyName:    input.CompanyName,
		CompanyWebsite: input.CompanyWebsite,
		InstagramID:    input.InstagramID,
		CouponCode:     input.CouponCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Order created", zap.String("orderId", result.TransactionID))
	c.JSON(http.StatusCreated, gin.H{
		"orderId":    result.TransactionID,
		"paymentUrl": result.PaymentURL,
	})
}

// Verify applies the gateway callback for an order payment.
func (h *OrderHandler) Verify(c *gin.Context) {
	id := c.Query("orderId")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId is required"})
		return
	}

	result, err := h.Payments.Verify(c.Request.Context(), models.KindOrder, id, c.Query("Authority"), c.Query("Status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Refund reverses a paid order. Admin only.
func (h *OrderHandler) Refund(c *gin.Context) {
	tx, err := h.Payments.Refund(c.Request.Context(), models.KindOrder, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// Get returns one order record.
func (h *OrderHandler) Get(c *gin.Context) {
	tx, err := h.Payments.GetTransaction(c.Request.Context(), models.KindOrder, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}
