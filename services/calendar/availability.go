package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	availabilityRepo "consultdesk/database/repository/availability"
	"consultdesk/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// freeBusyCacheTTL bounds how stale a cached free/busy answer may be. Short
// on purpose: a booking confirmed elsewhere must surface quickly.
const freeBusyCacheTTL = time.Minute

// DefaultAvailabilityService computes free/busy slots from external busy
// intervals and the configured weekly availability windows. Cache is
// optional; a nil client disables response caching.
type DefaultAvailabilityService struct {
	Provider          Provider
	Windows           availabilityRepo.AvailabilityRepository
	PrimaryCalendarID string
	Cache             *redis.Client
	Logger            *zap.Logger
}

func (s *DefaultAvailabilityService) FreeBusy(ctx context.Context, q FreeBusyQuery) (*FreeBusyResult, error) {
	loc, err := time.LoadLocation(q.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", q.TimeZone, err)
	}
	if !q.TimeMin.Before(q.TimeMax) {
		return nil, fmt.Errorf("timeMin must be before timeMax")
	}

	calendarIDs := q.CalendarIDs
	if len(calendarIDs) == 0 {
		calendarIDs = []string{s.PrimaryCalendarID}
	}

	cacheKey := freeBusyCacheKey(q.TimeMin, q.TimeMax, q.TimeZone, calendarIDs)
	if cached := s.cachedResult(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	busy, err := s.Provider.FreeBusy(ctx, q.TimeMin, q.TimeMax, q.TimeZone, calendarIDs)
	if err != nil {
		return nil, err
	}
	windows, err := s.Windows.ListWindows()
	if err != nil {
		return nil, err
	}

	result := ComputeSlots(q.TimeMin, q.TimeMax, loc, busy, windows)
	s.storeResult(ctx, cacheKey, &result)
	return &result, nil
}

func freeBusyCacheKey(timeMin, timeMax time.Time, timeZone string, calendarIDs []string) string {
	ids := append([]string(nil), calendarIDs...)
	sort.Strings(ids)
	return fmt.Sprintf("freebusy:%d:%d:%s:%s",
		timeMin.Unix(), timeMax.Unix(), timeZone, strings.Join(ids, ","))
}

// cachedResult returns a cached answer or nil. Cache failures only cost the
// round trip to the calendar provider.
func (s *DefaultAvailabilityService) cachedResult(ctx context.Context, key string) *FreeBusyResult {
	if s.Cache == nil {
		return nil
	}
	data, err := s.Cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.Logger.Warn("free/busy cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	var result FreeBusyResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

func (s *DefaultAvailabilityService) storeResult(ctx context.Context, key string, result *FreeBusyResult) {
	if s.Cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, key, data, freeBusyCacheTTL).Err(); err != nil {
		s.Logger.Warn("free/busy cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// ComputeSlots classifies every hour-aligned slot in [timeMin, timeMax) as
// busy or free. Hour alignment follows the wall clock of loc so DST-shifted
// days still produce clean local hours, while every overlap test runs in
// absolute time. Pure: no I/O, no shared state.
func ComputeSlots(timeMin, timeMax time.Time, loc *time.Location, busy []models.BusyInterval, windows []models.AvailabilityWindow) FreeBusyResult {
	busySlots := computeBusySlots(timeMin, timeMax, loc, busy)
	freeSlots := computeFreeSlots(timeMin, timeMax, loc, busy, windows)
	return FreeBusyResult{
		BusySlots: dedupeSlots(busySlots),
		FreeSlots: dedupeSlots(freeSlots),
	}
}

func computeBusySlots(timeMin, timeMax time.Time, loc *time.Location, busy []models.BusyInterval) []models.Slot {
	var slots []models.Slot
	for start := ceilToHour(timeMin, loc); ; start = nextHour(start) {
		end := nextHour(start)
		if end.After(timeMax) {
			break
		}
		ids := overlappingCalendars(start, end, busy)
		if len(ids) > 0 {
			slots = append(slots, models.Slot{Start: start, End: end, CalendarIDs: ids})
		}
	}
	return slots
}

func computeFreeSlots(timeMin, timeMax time.Time, loc *time.Location, busy []models.BusyInterval, windows []models.AvailabilityWindow) []models.Slot {
	byWeekday := make(map[time.Weekday][]models.AvailabilityWindow)
	dayOff := make(map[time.Weekday]bool)
	for _, w := range windows {
		byWeekday[w.Weekday] = append(byWeekday[w.Weekday], w)
		if w.DayOff {
			dayOff[w.Weekday] = true
		}
	}

	var slots []models.Slot
	first := timeMin.In(loc)
	for day := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc); day.Before(timeMax); day = day.AddDate(0, 0, 1) {
		// Any dayOff window suppresses the whole weekday.
		if dayOff[day.Weekday()] {
			continue
		}
		for _, w := range byWeekday[day.Weekday()] {
			windowStart, windowEnd, ok := windowBounds(day, w)
			if !ok {
				continue
			}
			for start := ceilToHour(windowStart, loc); ; start = nextHour(start) {
				end := nextHour(start)
				// Only full hours inside the window; partial hours never
				// become a slot.
				if end.After(windowEnd) {
					break
				}
				if start.Before(timeMin) || end.After(timeMax) {
					continue
				}
				if len(overlappingCalendars(start, end, busy)) == 0 {
					slots = append(slots, models.Slot{Start: start, End: end})
				}
			}
		}
	}
	return slots
}

// overlappingCalendars returns the distinct calendars whose busy intervals
// overlap [start, end), using half-open interval overlap.
func overlappingCalendars(start, end time.Time, busy []models.BusyInterval) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, b := range busy {
		if b.Start.Before(end) && b.End.After(start) && !seen[b.CalendarID] {
			seen[b.CalendarID] = true
			ids = append(ids, b.CalendarID)
		}
	}
	sort.Strings(ids)
	return ids
}

// ceilToHour rounds t up to the next wall-clock hour boundary in loc.
func ceilToHour(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	aligned := time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), 0, 0, 0, loc)
	if aligned.Before(lt) {
		aligned = nextHour(aligned)
	}
	return aligned
}

// nextHour advances one wall-clock hour. Built through time.Date so skipped
// or repeated DST hours normalize instead of drifting off the local hour
// grid.
func nextHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, t.Location())
}

// windowBounds resolves a window's "HH:MM" bounds on a concrete day.
func windowBounds(day time.Time, w models.AvailabilityWindow) (time.Time, time.Time, bool) {
	startH, startM, ok := parseClock(w.StartTime)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	endH, endM, ok := parseClock(w.EndTime)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	loc := day.Location()
	start := time.Date(day.Year(), day.Month(), day.Day(), startH, startM, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), endH, endM, 0, 0, loc)
	if !start.Before(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseClock(s string) (int, int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// dedupeSlots removes (start, end) duplicates; overlapping windows can
// regenerate the same slot. Output is sorted by start time.
func dedupeSlots(slots []models.Slot) []models.Slot {
	seen := make(map[string]bool)
	out := make([]models.Slot, 0, len(slots))
	for _, s := range slots {
		key := s.Start.Format(time.RFC3339) + "/" + s.End.Format(time.RFC3339)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
