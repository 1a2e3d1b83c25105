package models

import "time"

// TransactionKind distinguishes the three payable record types.
type TransactionKind string

const (
	KindBooking  TransactionKind = "booking"
	KindOrder    TransactionKind = "order"
	KindDonation TransactionKind = "donation"
)

// TransactionStatus is the payment lifecycle state of a transaction.
type TransactionStatus string

const (
	StatusPaymentInitiated  TransactionStatus = "Payment initiated"
	StatusPaymentSuccessful TransactionStatus = "Payment successful"
	StatusPaymentFailed     TransactionStatus = "Payment Failed"
	StatusPaymentRefunded   TransactionStatus = "Payment Refunded"
	StatusMeetingScheduled  TransactionStatus = "Meeting scheduled"
)

// Resolved reports whether the status has already been decided by a
// verification or refund. A resolved transaction never goes back to the
// gateway; repeated callbacks return the recorded outcome.
func (s TransactionStatus) Resolved() bool {
	return s != StatusPaymentInitiated
}

// Succeeded reports whether the transaction has been paid (and possibly
// scheduled since).
func (s TransactionStatus) Succeeded() bool {
	return s == StatusPaymentSuccessful || s == StatusMeetingScheduled
}

// Transaction is a booking, sponsorship order, or donation undergoing
// payment. Amount is the charged amount in toman after any coupon discount;
// the gateway is paid in rial (amount x 10).
type Transaction struct {
	ID     string            `bson:"id" json:"id"`
	Kind   TransactionKind   `bson:"kind" json:"kind"`
	Status TransactionStatus `bson:"status" json:"status"`
	Amount float64           `bson:"amount" json:"amount"`

	// Gateway correlation. Authority is set once a payment request has been
	// accepted; TransactionRef is the settlement reference, set only when the
	// payment verified successfully.
	Authority      string `bson:"authority,omitempty" json:"authority,omitempty"`
	TransactionRef string `bson:"transactionRef,omitempty" json:"transactionRef,omitempty"`

	CouponID string `bson:"couponId,omitempty" json:"couponId,omitempty"`
	Message  string `bson:"message,omitempty" json:"message,omitempty"`

	// Payer contact details.
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`

	// Booking-specific fields.
	Hours   int    `bson:"hours,omitempty" json:"hours,omitempty"`
	Comment string `bson:"comment,omitempty" json:"comment,omitempty"`

	// Meeting details, populated once a calendar event exists for a booking.
	EventID          string `bson:"eventId,omitempty" json:"eventId,omitempty"`
	MeetingURL       string `bson:"meetingUrl,omitempty" json:"meetingUrl,omitempty"`
	MeetingStartDate string `bson:"meetingStartDate,omitempty" json:"meetingStartDate,omitempty"`
	MeetingStartTime string `bson:"meetingStartTime,omitempty" json:"meetingStartTime,omitempty"`
	MeetingEndDate   string `bson:"meetingEndDate,omitempty" json:"meetingEndDate,omitempty"`
	MeetingEndTime   string `bson:"meetingEndTime,omitempty" json:"meetingEndTime,omitempty"`

	// Order-specific fields.
	PackageID    string `bson:"packageId,omitempty" json:"packageId,omitempty"`
	Quantity     string `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Price        string `bson:"price,omitempty" json:"price,omitempty"`
	Note         string `bson:"note,omitempty" json:"note,omitempty"`
	InternalNote string `bson:"internalNote,omitempty" json:"internalNote,omitempty"`
	SponsorID    string `bson:"sponsorId,omitempty" json:"sponsorId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
