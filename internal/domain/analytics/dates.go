package analytics

import (
	"strings"
	"time"
)

// DateLayout is the canonical calendar date encoding.
const DateLayout = "2006-01-02"

// Layouts accepted on input, tried in order. Timestamps keep the calendar
// date of their own offset; they are not shifted to UTC first.
var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// ParseDate parses any accepted date or timestamp form.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, ErrInvalidDate.WithCause(lastErr)
}

// CanonicalDate converts s into YYYY-MM-DD.
func CanonicalDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// DateRange is an inclusive range of canonical calendar dates.
type DateRange struct {
	Start string
	End   string
}

// NewDateRange validates and canonicalizes both bounds.
func NewDateRange(start, end string) (DateRange, error) {
	if strings.TrimSpace(start) == "" {
		return DateRange{}, ErrStartDateRequired
	}
	if strings.TrimSpace(end) == "" {
		return DateRange{}, ErrEndDateRequired
	}
	s, err := CanonicalDate(start)
	if err != nil {
		return DateRange{}, ErrInvalidStartDate
	}
	e, err := CanonicalDate(end)
	if err != nil {
		return DateRange{}, ErrInvalidEndDate
	}
	if s > e {
		return DateRange{}, ErrInvertedRange
	}
	return DateRange{Start: s, End: e}, nil
}

// Contains reports whether the canonical date d falls inside the range.
// Canonical dates order lexically the same as they do on the calendar.
func (r DateRange) Contains(d string) bool {
	return d >= r.Start && d <= r.End
}

// TrailingDays returns the n-day range ending the day before now.
func TrailingDays(now time.Time, n int) DateRange {
	if n < 1 {
		n = 1
	}
	end := now.AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(n - 1))
	return DateRange{Start: start.Format(DateLayout), End: end.Format(DateLayout)}
}

// FilterEvents keeps the events inside r, and at outletID when it is set.
// Returned events carry canonical dates. Events with unparseable dates are
// dropped and counted in the second return value.
func FilterEvents(events []SalesEvent, r DateRange, outletID string) ([]SalesEvent, int) {
	out := make([]SalesEvent, 0, len(events))
	malformed := 0
	for _, ev := range events {
		if outletID != "" && ev.OutletID != outletID {
			continue
		}
		d, err := CanonicalDate(ev.Date)
		if err != nil {
			malformed++
			continue
		}
		if !r.Contains(d) {
			continue
		}
		ev.Date = d
		out = append(out, ev)
	}
	return out, malformed
}
