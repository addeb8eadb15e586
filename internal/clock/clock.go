// Package clock converts between absolute instants and the clinic's civil
// calendar. The clinic runs on a fixed UTC-6 offset with no daylight saving,
// so nothing here depends on the host's TZ setting.
package clock

import (
	"fmt"
	"time"

	"clinic-api/internal/model"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// DefaultAppointmentTime is used when a booking arrives without a time.
	DefaultAppointmentTime = "09:00"
)

// Location is the clinic's civil zone.
var Location = time.FixedZone("UTC-6", -6*60*60)

// Now returns the current instant expressed in the clinic zone.
func Now() time.Time { return time.Now().In(Location) }

// Today returns the clinic's current calendar date.
func Today() string { return DateString(Now()) }

func DateString(t time.Time) string { return t.In(Location).Format(DateLayout) }

func TimeString(t time.Time) string { return t.In(Location).Format(TimeLayout) }

// Compose returns the instant for a local date and HH:MM time. An empty time
// means midnight.
func Compose(date, tm string) (time.Time, error) {
	if tm == "" {
		tm = "00:00"
	}
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	hm, err := parseTime(tm)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(hm), nil
}

// StartOfDay is 00:00:00.000 local on date.
func StartOfDay(date string) (time.Time, error) {
	return ParseDate(date)
}

// EndOfDay is 23:59:59.999 local on date.
func EndOfDay(date string) (time.Time, error) {
	start, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(24*time.Hour - time.Millisecond), nil
}

// ParseDate returns local midnight of a YYYY-MM-DD date. Impossible dates
// such as 2024-02-30 are rejected.
func ParseDate(date string) (time.Time, error) {
	if len(date) != len(DateLayout) {
		return time.Time{}, invalidDate(date)
	}
	t, err := time.ParseInLocation(DateLayout, date, Location)
	if err != nil {
		return time.Time{}, invalidDate(date)
	}
	return t, nil
}

// parseTime returns the offset from midnight for an HH:MM string.
func parseTime(tm string) (time.Duration, error) {
	if len(tm) != len(TimeLayout) {
		return 0, invalidTime(tm)
	}
	t, err := time.Parse(TimeLayout, tm)
	if err != nil {
		return 0, invalidTime(tm)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func invalidDate(s string) error {
	return &model.ValidationError{Msg: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", s), Err: model.ErrInvalidDate}
}

func invalidTime(s string) error {
	return &model.ValidationError{Msg: fmt.Sprintf("invalid time %q, want HH:MM", s), Err: model.ErrInvalidTime}
}
