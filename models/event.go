package models

import "time"

// EventEntryPoint is one way to join a calendar event's conference.
type EventEntryPoint struct {
	Type string `json:"entryPointType"`
	URI  string `json:"uri"`
}

// CalendarEvent is the provider's view of a created event. MeetingLink
// extraction (hangout link first, then the first video entry point) is done
// by the scheduling service, not the adapter.
type CalendarEvent struct {
	ID          string            `json:"id"`
	HangoutLink string            `json:"hangoutLink,omitempty"`
	EntryPoints []EventEntryPoint `json:"entryPoints,omitempty"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	TimeZone    string            `json:"timeZone,omitempty"`
}

// EventRequest describes the event to materialize for a scheduled meeting.
type EventRequest struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	TimeZone    string    `json:"timeZone"`
	Attendees   []string  `json:"attendees,omitempty"`
	WithMeet    bool      `json:"withMeet"`
}
