package models

import "time"

// AvailabilityWindow is one recurring working interval for one weekday,
// expressed as local wall-clock times ("HH:MM"). A weekday may carry any
// number of windows; DayOff on any of them suppresses the whole day.
type AvailabilityWindow struct {
	ID        string       `bson:"id" json:"id"`
	Weekday   time.Weekday `bson:"weekday" json:"weekday"`
	StartTime string       `bson:"startTime" json:"startTime"`
	EndTime   string       `bson:"endTime" json:"endTime"`
	DayOff    bool         `bson:"dayOff" json:"dayOff"`
}

// BusyInterval is an occupied range reported by one external calendar.
// Fetched per query, never persisted.
type BusyInterval struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	CalendarID string    `json:"calendarId"`
}

// Slot is a one-hour candidate interval, hour-aligned to the query
// timezone's wall clock. Busy slots carry the calendars that overlap them.
type Slot struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	CalendarIDs []string  `json:"calendarIds,omitempty"`
}
