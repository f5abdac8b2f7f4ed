package report

import (
	"fmt"
	"time"
)

// MaxMonths bounds the number of buckets of any monthly series
const MaxMonths = 36

const monthLayout = "2006-01"

// Month is one bucket of a monthly series
type Month struct {
	// Key is the "YYYY-MM" prefix matched against ISO dates
	Key string `json:"key"`
	// Label is the display form "MM/YYYY"
	Label string `json:"label"`
}

func newMonth(t time.Time) Month {
	return Month{Key: t.Format(monthLayout), Label: t.Format("01/2006")}
}

// Months lists every month from start to end inclusive. Both bounds accept
// "YYYY-MM" or a full ISO date. When the span exceeds limit buckets only the
// most recent limit months are kept. An inverted range yields no buckets.
func Months(start, end string, limit int) ([]Month, error) {
	from, err := parseMonth(start)
	if err != nil {
		return nil, err
	}
	to, err := parseMonth(end)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxMonths {
		limit = MaxMonths
	}
	if to.Before(from) {
		return []Month{}, nil
	}

	span := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month()) + 1
	if span > limit {
		from = to.AddDate(0, -(limit - 1), 0)
		span = limit
	}
	months := make([]Month, 0, span)
	for i := 0; i < span; i++ {
		months = append(months, newMonth(from.AddDate(0, i, 0)))
	}
	return months, nil
}

// TrailingMonths returns the n months ending with the month of today
func TrailingMonths(today string, n int) ([]Month, error) {
	if n <= 0 {
		n = 1
	}
	if n > MaxMonths {
		n = MaxMonths
	}
	end, err := parseMonth(today)
	if err != nil {
		return nil, err
	}
	return Months(end.AddDate(0, -(n-1), 0).Format(monthLayout), end.Format(monthLayout), n)
}

// Bounds returns the ISO date range covering the buckets, from the first day
// of the first month to the last day of the last one. Both ends are real
// calendar dates so DATE columns accept them.
func Bounds(months []Month) (from, to string) {
	if len(months) == 0 {
		return "", ""
	}
	last := months[len(months)-1].Key
	t, err := parseMonth(last)
	if err != nil {
		return months[0].Key + "-01", last + "-28"
	}
	return months[0].Key + "-01", t.AddDate(0, 1, -1).Format(time.DateOnly)
}

func parseMonth(s string) (time.Time, error) {
	if len(s) < len(monthLayout) {
		return time.Time{}, fmt.Errorf("invalid month %q", s)
	}
	t, err := time.Parse(monthLayout, s[:len(monthLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t, nil
}

// bucketIndex maps month keys to their position in the series
func bucketIndex(months []Month) map[string]int {
	idx := make(map[string]int, len(months))
	for i, m := range months {
		idx[m.Key] = i
	}
	return idx
}
