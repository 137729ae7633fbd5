package utils

import (
	"time"

	"github.com/julianstephens/daystreak/internal/constants"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
)

// All day arithmetic happens in UTC so day boundaries do not depend on the host locale.
var referenceZone = time.UTC

const secondsPerDay = 24 * 60 * 60

// DateToString formats the calendar day of t (in the reference zone) as YYYY-MM-DD.
func DateToString(t time.Time) string {
	return t.In(referenceZone).Format(constants.DateFormat)
}

// StringToDate parses a YYYY-MM-DD string to midnight of that day in the reference zone.
func StringToDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(constants.DateFormat, s, referenceZone)
	if err != nil {
		return time.Time{}, &apperrors.ParseError{Value: s, Err: err}
	}
	// Persisted dates must round-trip bit-exact for lexicographic sorting
	if t.Format(constants.DateFormat) != s {
		return time.Time{}, &apperrors.ParseError{Value: s}
	}
	return t, nil
}

// Today returns the reference-zone date string of now.
func Today(now time.Time) string {
	return DateToString(now)
}

// DayOfWeek returns the weekday of a date string with Monday = 0 and Sunday = 6.
func DayOfWeek(s string) (int, error) {
	t, err := StringToDate(s)
	if err != nil {
		return 0, err
	}
	return (int(t.Weekday()) + 6) % 7, nil
}

// DaysBetween returns the signed number of calendar days from a to b (b - a).
func DaysBetween(a, b time.Time) int {
	// counted on Unix seconds: time.Duration saturates after ~292 years
	return int((truncateToDay(b).Unix() - truncateToDay(a).Unix()) / secondsPerDay)
}

// DaysBetweenDates is DaysBetween over date strings.
func DaysBetweenDates(a, b string) (int, error) {
	ta, err := StringToDate(a)
	if err != nil {
		return 0, err
	}
	tb, err := StringToDate(b)
	if err != nil {
		return 0, err
	}
	return DaysBetween(ta, tb), nil
}

// AddDays shifts a date string by n days.
func AddDays(s string, n int) (string, error) {
	t, err := StringToDate(s)
	if err != nil {
		return "", err
	}
	return DateToString(t.AddDate(0, 0, n)), nil
}

// DateRange returns every date from start through end inclusive.
// An end before start yields an empty range.
func DateRange(start, end string) ([]string, error) {
	from, err := StringToDate(start)
	if err != nil {
		return nil, err
	}
	to, err := StringToDate(end)
	if err != nil {
		return nil, err
	}

	var dates []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, DateToString(d))
	}
	return dates, nil
}

// ValidateDateFormat checks if the string is a canonical date.
func ValidateDateFormat(s string) bool {
	_, err := StringToDate(s)
	return err == nil
}

// ParseTime parses a reminder time in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTime(timeStr)
	return err == nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.In(referenceZone)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, referenceZone)
}
