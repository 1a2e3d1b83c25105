package calendar

import (
	"context"
	"fmt"
	"time"

	settingsRepo "consultdesk/database/repository/settings"
	transactionRepo "consultdesk/database/repository/transaction"
	"consultdesk/models"
	"consultdesk/services/payment"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Scheduler materializes calendar events for verified bookings and moves
// them to "Meeting scheduled".
type Scheduler struct {
	Repo       transactionRepo.TransactionRepository
	Provider   Provider
	Settings   settingsRepo.SettingsRepository
	CalendarID string
	Logger     *zap.Logger
}

// ScheduleMeeting creates the external event for a paid booking and records
// the meeting details on the record. A failed event creation leaves the
// booking verified but unscheduled; the call can simply be retried.
func (s *Scheduler) ScheduleMeeting(ctx context.Context, bookingID string, req models.EventRequest) (*models.CalendarEvent, error) {
	booking, err := s.Repo.GetByID(models.KindBooking, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	// A replayed scheduling request returns the recorded event; creating a
	// fresh one would spam attendees with invites only to withdraw it.
	if booking.Status == models.StatusMeetingScheduled {
		return recordedEvent(booking), nil
	}
	if _, err := payment.Allow(models.KindBooking, booking.Status, models.StatusMeetingScheduled); err != nil {
		return nil, err
	}

	event, err := s.Provider.InsertEvent(ctx, s.calendarID(), req)
	if err != nil {
		return nil, err
	}

	link := MeetingLink(event)
	startDate, startTime := splitLocal(event.Start, req.TimeZone)
	endDate, endTime := splitLocal(event.End, req.TimeZone)

	won, err := s.Repo.Transition(models.KindBooking, bookingID,
		models.StatusPaymentSuccessful, models.StatusMeetingScheduled, bson.M{
			"eventId":          event.ID,
			"meetingUrl":       link,
			"meetingStartDate": startDate,
			"meetingStartTime": startTime,
			"meetingEndDate":   endDate,
			"meetingEndTime":   endTime,
			"message":          "Meeting scheduled",
		})
	if err != nil {
		return nil, err
	}
	if !won {
		// Status moved while the event was being created (e.g. a refund).
		// Withdraw the event so the calendars stay consistent.
		s.Logger.Warn("booking left payment-successful during event creation, removing event",
			zap.String("bookingId", bookingID), zap.String("eventId", event.ID))
		if delErr := s.Provider.DeleteEvent(ctx, s.calendarID(), event.ID); delErr != nil {
			s.Logger.Warn("failed to remove orphaned event",
				zap.String("eventId", event.ID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("booking %s is no longer awaiting scheduling", bookingID)
	}

	return event, nil
}

// recordedEvent rebuilds the event view from the meeting fields persisted on
// an already scheduled booking.
func recordedEvent(booking *models.Transaction) *models.CalendarEvent {
	return &models.CalendarEvent{
		ID:          booking.EventID,
		HangoutLink: booking.MeetingURL,
	}
}

// MeetingLink extracts the conferencing link from a created event: the
// direct hangout link when present, otherwise the first video entry point.
func MeetingLink(event *models.CalendarEvent) string {
	if event.HangoutLink != "" {
		return event.HangoutLink
	}
	for _, ep := range event.EntryPoints {
		if ep.Type == "video" {
			return ep.URI
		}
	}
	return ""
}

func (s *Scheduler) calendarID() string {
	if s.Settings != nil {
		if settings, err := s.Settings.Get(); err == nil && settings != nil && settings.PrimaryCalendarID != "" {
			return settings.PrimaryCalendarID
		}
	}
	return s.CalendarID
}

// splitLocal renders an instant as local date and time-of-day components.
func splitLocal(t time.Time, timeZone string) (string, string) {
	if loc, err := time.LoadLocation(timeZone); err == nil {
		t = t.In(loc)
	}
	return t.Format("2006-01-02"), t.Format("15:04")
}
