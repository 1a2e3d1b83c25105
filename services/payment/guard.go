package payment

import "consultdesk/models"

// Directive is advisory metadata returned with an allowed transition. The
// caller orchestrating the update owns the side effects it names.
type Directive struct {
	// ClearMeeting: wipe meeting link, dates, times and event id.
	ClearMeeting bool
	// CancelEvent: attempt external calendar event cancellation (best-effort).
	CancelEvent bool
}

// allowedTransitions is the per-kind status graph. Donations model no refund.
var allowedTransitions = map[models.TransactionKind]map[models.TransactionStatus][]models.TransactionStatus{
	models.KindBooking: {
		models.StatusPaymentInitiated:  {models.StatusPaymentSuccessful, models.StatusPaymentFailed},
		models.StatusPaymentSuccessful: {models.StatusPaymentRefunded, models.StatusMeetingScheduled},
		models.StatusMeetingScheduled:  {models.StatusPaymentRefunded},
	},
	models.KindOrder: {
		models.StatusPaymentInitiated:  {models.StatusPaymentSuccessful, models.StatusPaymentFailed},
		models.StatusPaymentSuccessful: {models.StatusPaymentRefunded},
	},
	models.KindDonation: {
		models.StatusPaymentInitiated: {models.StatusPaymentSuccessful, models.StatusPaymentFailed},
	},
}

// Allow reports whether a status change is permitted for the kind. A
// same-status update is an idempotent no-op allow. Booking refunds out of
// "Meeting scheduled" additionally direct the caller to cancel the calendar
// event and clear meeting fields.
func Allow(kind models.TransactionKind, from, to models.TransactionStatus) (Directive, error) {
	if from == to {
		return Directive{}, nil
	}
	for _, allowed := range allowedTransitions[kind][from] {
		if allowed != to {
			continue
		}
		if kind == models.KindBooking && from == models.StatusMeetingScheduled && to == models.StatusPaymentRefunded {
			return Directive{ClearMeeting: true, CancelEvent: true}, nil
		}
		return Directive{}, nil
	}
	return Directive{}, &TransitionError{Kind: kind, From: from, To: to}
}
