package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"consultdesk/models"
	"consultdesk/services/payment"
)

// DonationHandler serves the donation endpoints.
type DonationHandler struct {
	Payments payment.PaymentService
}

func NewDonationHandler(payments payment.PaymentService) *DonationHandler {
	return &DonationHandler{Payments: payments}
}

// Create registers a donation and initiates its payment. All contact fields
// are optional; anonymous donations carry only an amount.
func (h *DonationHandler) Create(c *gin.Context) {
	logger := getLogger(c)
	var input struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
		Name   string  `json:"name"`
		Email  string  `json:"email"`
		Mobile string  `json:"mobile"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result, err := h.Payments.InitiateDonation(c.Request.Context(), payment.DonationInput{
		Amount: input.Amount,
		Name:   input.Name,
		Email:  input.Email,
		Mobile: input.Mobile,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Donation created", zap.String("donationId", result.TransactionID))
	c.JSON(http.StatusCreated, gin.H{
		"donationId": result.TransactionID,
		"paymentUrl": result.PaymentURL,
	})
}

// Verify applies the gateway callback for a donation payment.
func (h *DonationHandler) Verify(c *gin.Context) {
	id := c.Query("donationId")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "donationId is required"})
		return
	}

	result, err := h.Payments.Verify(c.Request.Context(), models.KindDonation, id, c.Query("Authority"), c.Query("Status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns one donation record.
func (h *DonationHandler) Get(c *gin.Context) {
	tx, err := h.Payments.GetTransaction(c.Request.Context(), models.KindDonation, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}
