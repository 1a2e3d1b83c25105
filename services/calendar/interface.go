package calendar

import (
	"context"
	"errors"
	"time"

	"consultdesk/models"
)

// ErrBookingNotFound is returned when a meeting operation references a
// booking that does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// Provider is the narrow port to the external calendar service.
type Provider interface {
	// FreeBusy fetches the busy intervals of the given calendars within
	// [timeMin, timeMax).
	FreeBusy(ctx context.Context, timeMin, timeMax time.Time, timeZone string, calendarIDs []string) ([]models.BusyInterval, error)
	// InsertEvent creates an event on the calendar.
	InsertEvent(ctx context.Context, calendarID string, req models.EventRequest) (*models.CalendarEvent, error)
	// DeleteEvent removes an event from the calendar.
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// FreeBusyQuery asks which hour slots are free or busy in a time range.
type FreeBusyQuery struct {
	TimeMin     time.Time
	TimeMax     time.Time
	TimeZone    string
	CalendarIDs []string
}

// FreeBusyResult carries the classified slots, both hour-aligned in the
// query's timezone and deduplicated.
type FreeBusyResult struct {
	BusySlots []models.Slot `json:"busySlots"`
	FreeSlots []models.Slot `json:"freeSlots"`
}

// AvailabilityService answers free/busy queries. Read-only; safe to run
// fully in parallel across independent queries.
type AvailabilityService interface {
	FreeBusy(ctx context.Context, q FreeBusyQuery) (*FreeBusyResult, error)
}
