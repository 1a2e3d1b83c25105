package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"consultdesk/models"
	"consultdesk/services/calendar"
	"consultdesk/services/payment"
)

// BookingHandler serves the consulting booking endpoints.
type BookingHandler struct {
	Payments     payment.PaymentService
	Availability calendar.AvailabilityService
	Scheduler    *calendar.Scheduler
}

func NewBookingHandler(payments payment.PaymentService, availability calendar.AvailabilityService, scheduler *calendar.Scheduler) *BookingHandler {
	return &BookingHandler{Payments: payments, Availability: availability, Scheduler: scheduler}
}

// Create registers a booking and initiates its payment.
func (h *BookingHandler) Create(c *gin.Context) {
	logger := getLogger(c)
	var input struct {
		Name       string  `json:"name" binding:"required"`
		Email      string  `json:"email" binding:"required,email"`
		Phone      string  `json:"phone" binding:"required"`
		Hours      int     `json:"hours" binding:"required,gt=0"`
		Amount     float64 `json:"amount" binding:"required,gt=0"`
		Comment    string  `json:"comment"`
		CouponCode string  `json:"couponCode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result, err := h.Payments.InitiateBooking(c.Request.Context(), payment.BookingInput{
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Hours:      input.Hours,
		Amount:     input.Amount,
		Comment:    input.Comment,
		CouponCode: input.CouponCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Booking created", zap.String("bookingId", result.TransactionID))
	c.JSON(http.StatusCreated, gin.H{
		"bookingId":  result.TransactionID,
		"paymentUrl": result.PaymentURL,
	})
}

// Verify applies the gateway callback for a booking payment.
func (h *BookingHandler) Verify(c *gin.Context) {
	id := c.Query("bookingId")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bookingId is required"})
		return
	}

	result, err := h.Payments.Verify(c.Request.Context(), models.KindBooking, id, c.Query("Authority"), c.Query("Status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Refund reverses a paid booking and cancels its meeting if one was
// scheduled. Admin only.
func (h *BookingHandler) Refund(c *gin.Context) {
	tx, err := h.Payments.Refund(c.Request.Context(), models.KindBooking, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// Get returns one booking record.
func (h *BookingHandler) Get(c *gin.Context) {
	tx, err := h.Payments.GetTransaction(c.Request.Context(), models.KindBooking, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// FreeBusy classifies hour slots in a time range as free or busy, combining
// calendar busy intervals with the configured weekly availability.
func (h *BookingHandler) FreeBusy(c *gin.Context) {
	var input struct {
		TimeMin  string   `json:"timeMin" binding:"required"`
		TimeMax  string   `json:"timeMax" binding:"required"`
		TimeZone string   `json:"timeZone" binding:"required"`
		Items    []string `json:"items"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	timeMin, err := time.Parse(time.RFC3339, input.TimeMin)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timeMin must be RFC3339"})
		return
	}
	timeMax, err := time.Parse(time.RFC3339, input.TimeMax)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timeMax must be RFC3339"})
		return
	}
	if !timeMax.After(timeMin) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timeMax must be after timeMin"})
		return
	}

	result, err := h.Availability.FreeBusy(c.Request.Context(), calendar.FreeBusyQuery{
		TimeMin:     timeMin,
		TimeMax:     timeMax,
		TimeZone:    input.TimeZone,
		CalendarIDs: input.Items,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateEvent schedules the meeting for a paid booking.
func (h *BookingHandler) CreateEvent(c *gin.Context) {
	logger := getLogger(c)
	var input struct {
		BookingID string `json:"bookingId" binding:"required"`
		Event     struct {
			Summary     string   `json:"summary" binding:"required"`
			Description string   `json:"description"`
			Start       string   `json:"start" binding:"required"`
			End         string   `json:"end" binding:"required"`
			TimeZone    string   `json:"timeZone" binding:"required"`
			Attendees   []string `json:"attendees"`
			WithMeet    bool     `json:"withMeet"`
		} `json:"event" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	start, err := time.Parse(time.RFC3339, input.Event.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event.start must be RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, input.Event.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event.end must be RFC3339"})
		return
	}
	if !end.After(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event.end must be after event.start"})
		return
	}

	event, err := h.Scheduler.ScheduleMeeting(c.Request.Context(), input.BookingID, models.EventRequest{
		Summary:     input.Event.Summary,
		Description: input.Event.Description,
		Start:       start,
		End:         end,
		TimeZone:    input.Event.TimeZone,
		Attendees:   input.Event.Attendees,
		WithMeet:    input.Event.WithMeet,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Meeting scheduled",
		zap.String("bookingId", input.BookingID),
		zap.String("eventId", event.ID))
	c.JSON(http.StatusCreated, gin.H{
		"event":      event,
		"meetingUrl": calendar.MeetingLink(event),
	})
}
