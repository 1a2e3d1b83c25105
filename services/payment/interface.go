package payment

import (
	"context"
	"time"

	"consultdesk/models"
)

// Gateway is the narrow port to the payment provider. Both calls are
// blocking I/O with no internal retry; retry policy belongs to the caller.
type Gateway interface {
	// RequestPayment submits a signed payment request and returns the opaque
	// authority token on success.
	RequestPayment(ctx context.Context, req GatewayRequest) (string, error)
	// VerifyPayment confirms a settled payment and returns the gateway's
	// settlement reference.
	VerifyPayment(ctx context.Context, req GatewayVerify) (string, error)
}

// GatewayRequest carries everything a payment request needs. Amounts are in
// the gateway's minor unit (rial).
type GatewayRequest struct {
	MerchantID  string
	BaseURL     string
	AmountRials int64
	CallbackURL string
	Description string
	Metadata    map[string]string
}

// GatewayVerify carries a verification call. The amount always comes from
// the persisted transaction, never from client input.
type GatewayVerify struct {
	MerchantID  string
	BaseURL     string
	AmountRials int64
	Authority   string
}

// EventCanceler cancels an external calendar event during a refund.
// Failures are logged, not fatal; the refund proceeds regardless.
type EventCanceler interface {
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// VerifyScheduler enqueues a delayed re-verification for transactions whose
// gateway callback may never arrive.
type VerifyScheduler interface {
	ScheduleVerify(kind models.TransactionKind, id, authority string, delay time.Duration) error
}

// BookingInput is the validated payload for a consulting booking.
type BookingInput struct {
	Name       string
	Email      string
	Phone      string
	Hours      int
	Amount     float64
	Comment    string
	CouponCode string
}

// OrderInput is the validated payload for a sponsorship order. When
// SponsorID is empty the sponsor is looked up by email or created from the
// contact fields.
type OrderInput struct {
	PackageID      string
	Amount         float64
	Price          string
	Quantity       string
	Note           string
	InternalNote   string
	SponsorID      string
	Name           string
	Email          string
	Phone          string
	CompanyName    string
	CompanyWebsite string
	InstagramID    string
	CouponCode     string
}

// DonationInput is the validated payload for a donation.
type DonationInput struct {
	Amount float64
	Name   string
	Email  string
	Mobile string
}

// InitiateResult is returned once the gateway accepted a payment request.
type InitiateResult struct {
	TransactionID string `json:"transactionId"`
	PaymentURL    string `json:"paymentUrl"`
}

// VerifyResult is the recorded outcome of a verification.
type VerifyResult struct {
	Success     bool                `json:"success"`
	Transaction *models.Transaction `json:"transaction"`
}

// PaymentService coordinates pricing, persistence, the gateway protocol and
// the status state machine for all three transaction kinds.
type PaymentService interface {
	InitiateBooking(ctx context.Context, in BookingInput) (*InitiateResult, error)
	InitiateOrder(ctx context.Context, in OrderInput) (*InitiateResult, error)
	InitiateDonation(ctx context.Context, in DonationInput) (*InitiateResult, error)
	// Verify applies a gateway callback. Safe to invoke any number of times
	// for the same transaction; repeated calls return the recorded outcome
	// without re-contacting the gateway or re-applying coupon usage.
	Verify(ctx context.Context, kind models.TransactionKind, id, authority, statusParam string) (*VerifyResult, error)
	// Refund transitions a paid transaction to refunded, cancelling any
	// scheduled meeting for bookings.
	Refund(ctx context.Context, kind models.TransactionKind, id string) (*models.Transaction, error)
	// GetTransaction fetches one transaction record.
	GetTransaction(ctx context.Context, kind models.TransactionKind, id string) (*models.Transaction, error)
}
