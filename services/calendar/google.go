package calendar

import (
	"context"
	"fmt"
	"time"

	"consultdesk/models"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleProvider implements Provider against the Google Calendar API using
// the OAuth2 refresh-token flow.
type GoogleProvider struct {
	svc *calendarapi.Service
}

// NewGoogleProvider builds the calendar client from OAuth credentials.
func NewGoogleProvider(ctx context.Context, clientID, clientSecret, refreshToken string) (*GoogleProvider, error) {
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("missing Google API credentials")
	}
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendarapi.CalendarScope},
	}
	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	svc, err := calendarapi.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleProvider{svc: svc}, nil
}

// FreeBusy queries busy intervals for the given calendars.
func (p *GoogleProvider) FreeBusy(ctx context.Context, timeMin, timeMax time.Time, timeZone string, calendarIDs []string) ([]models.BusyInterval, error) {
	items := make([]*calendarapi.FreeBusyRequestItem, 0, len(calendarIDs))
	for _, id := range calendarIDs {
		items = append(items, &calendarapi.FreeBusyRequestItem{Id: id})
	}

	resp, err := p.svc.Freebusy.Query(&calendarapi.FreeBusyRequest{
		TimeMin:  timeMin.Format(time.RFC3339),
		TimeMax:  timeMax.Format(time.RFC3339),
		TimeZone: timeZone,
		Items:    items,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freeBusy query failed: %w", err)
	}

	var busy []models.BusyInterval
	for calendarID, cal := range resp.Calendars {
		for _, period := range cal.Busy {
			start, err := time.Parse(time.RFC3339, period.Start)
			if err != nil {
				return nil, fmt.Errorf("malformed busy start %q: %w", period.Start, err)
			}
			end, err := time.Parse(time.RFC3339, period.End)
			if err != nil {
				return nil, fmt.Errorf("malformed busy end %q: %w", period.End, err)
			}
			busy = append(busy, models.BusyInterval{Start: start, End: end, CalendarID: calendarID})
		}
	}
	return busy, nil
}

// InsertEvent creates the event, requesting a Meet conference when asked.
func (p *GoogleProvider) InsertEvent(ctx context.Context, calendarID string, req models.EventRequest) (*models.CalendarEvent, error) {
	event := &calendarapi.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start:       &calendarapi.EventDateTime{DateTime: req.Start.Format(time.RFC3339), TimeZone: req.TimeZone},
		End:         &calendarapi.EventDateTime{DateTime: req.End.Format(time.RFC3339), TimeZone: req.TimeZone},
	}
	for _, email := range req.Attendees {
		event.Attendees = append(event.Attendees, &calendarapi.EventAttendee{Email: email})
	}
	if req.WithMeet {
		event.ConferenceData = &calendarapi.ConferenceData{
			CreateRequest: &calendarapi.CreateConferenceRequest{
				RequestId:             uuid.New().String(),
				ConferenceSolutionKey: &calendarapi.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
	}

	created, err := p.svc.Events.Insert(calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("event creation failed: %w", err)
	}
	return toCalendarEvent(created), nil
}

// DeleteEvent removes the event, notifying attendees.
func (p *GoogleProvider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := p.svc.Events.Delete(calendarID, eventID).SendUpdates("all").Context(ctx).Do(); err != nil {
		return fmt.Errorf("event deletion failed: %w", err)
	}
	return nil
}

func toCalendarEvent(ev *calendarapi.Event) *models.CalendarEvent {
	out := &models.CalendarEvent{
		ID:          ev.Id,
		HangoutLink: ev.HangoutLink,
	}
	if ev.Start != nil {
		out.TimeZone = ev.Start.TimeZone
		if t, err := time.Parse(time.RFC3339, ev.Start.DateTime); err == nil {
			out.Start = t
		}
	}
	if ev.End != nil {
		if t, err := time.Parse(time.RFC3339, ev.End.DateTime); err == nil {
			out.End = t
		}
	}
	if ev.ConferenceData != nil {
		for _, ep := range ev.ConferenceData.EntryPoints {
			out.EntryPoints = append(out.EntryPoints, models.EventEntryPoint{
				Type: ep.EntryPointType,
				URI:  ep.Uri,
			})
		}
	}
	return out
}
