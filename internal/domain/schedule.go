package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidWeekday = errors.New("invalid weekday")
	ErrInvalidTime    = errors.New("invalid time")
	ErrInvalidSlot    = errors.New("invalid slot encoding")
)

// Slot is the weekly report slot, interpreted in the configured
// report timezone.
type Slot struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseSlot parses a weekday (name or 0–6, Sunday = 0) and an HH:MM
// time into a Slot.
func ParseSlot(weekday, hhmm string) (Slot, error) {
	var s Slot

	w := strings.ToLower(strings.TrimSpace(weekday))
	if wd, ok := weekdayNames[w]; ok {
		s.Weekday = wd
	} else {
		n, err := strconv.Atoi(w)
		if err != nil || n < 0 || n > 6 {
			return s, fmt.Errorf("%w: %s", ErrInvalidWeekday, weekday)
		}
		s.Weekday = time.Weekday(n)
	}

	h, m, err := parseHHMM(hhmm)
	if err != nil {
		return s, err
	}
	s.Hour, s.Minute = h, m
	return s, nil
}

func parseHHMM(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: expected HH:MM", ErrInvalidTime)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("%w: hour", ErrInvalidTime)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w: minute", ErrInvalidTime)
	}
	return h, m, nil
}

// Matches reports whether t (already in the report timezone) falls in
// this slot's minute.
func (s Slot) Matches(t time.Time) bool {
	return t.Weekday() == s.Weekday && t.Hour() == s.Hour && t.Minute() == s.Minute
}

// String renders the slot for user-facing status output.
func (s Slot) String() string {
	return fmt.Sprintf("%s %02d:%02d", s.Weekday, s.Hour, s.Minute)
}

// Encode serializes the slot for the store's config namespace.
func (s Slot) Encode() string {
	return fmt.Sprintf("%d:%02d:%02d", int(s.Weekday), s.Hour, s.Minute)
}

// DecodeSlot parses the persisted form produced by Encode.
func DecodeSlot(v string) (Slot, error) {
	var s Slot
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return s, fmt.Errorf("%w: %q", ErrInvalidSlot, v)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil || w < 0 || w > 6 {
		return s, fmt.Errorf("%w: %q", ErrInvalidSlot, v)
	}
	h, m, err := parseHHMM(parts[1])
	if err != nil {
		return s, fmt.Errorf("%w: %q", ErrInvalidSlot, v)
	}
	s.Weekday, s.Hour, s.Minute = time.Weekday(w), h, m
	return s, nil
}

// DateKey returns the calendar-date key used by the recurrence marker.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
