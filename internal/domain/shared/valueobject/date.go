package valueobject

import (
	"fmt"
	"time"
)

// DateLayout is the storage format of every date column
const DateLayout = "2006-01-02"

// FormatDate renders t as an ISO calendar date in its own location.
// The zero time means "today" in local time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format(DateLayout)
}

// Today returns the current local calendar date
func Today() string {
	return FormatDate(time.Time{})
}

// FormatDateBR renders an ISO date as "DD/MM/YYYY"; unparseable input is
// returned unchanged.
func FormatDateBR(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("02/01/2006")
}

// ParseDate parses the calendar-day part of an ISO date or timestamp.
// The result is a civil date at midnight UTC so that differences between two
// parsed dates are always whole days, independent of DST transitions.
func ParseDate(date string) (time.Time, error) {
	if len(date) < len(DateLayout) {
		return time.Time{}, fmt.Errorf("invalid date %q", date)
	}
	t, err := time.Parse(DateLayout, date[:len(DateLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// DiffDays returns the signed number of calendar days from reference to date
func DiffDays(date, reference string) (int, error) {
	d, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	r, err := ParseDate(reference)
	if err != nil {
		return 0, err
	}
	return int(d.Sub(r).Hours() / 24), nil
}

// AddDays shifts an ISO date by n calendar days
func AddDays(date string, n int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, n).Format(DateLayout), nil
}

// MonthKey returns the "YYYY-MM" prefix used for month bucketing
func MonthKey(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}
