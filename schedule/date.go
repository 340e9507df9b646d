package schedule

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date
// =============================================================================

// Date is a calendar date with no time-of-day component. All scheduler
// arithmetic happens at day granularity; the underlying time.Time is always
// midnight UTC.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

// NewDate constructs a Date from its calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses "YYYY-MM-DD". A full ISO datetime is accepted too; the
// time-of-day part after 'T' is discarded so stored timestamps compare at
// day granularity.
func ParseDate(s string) (Date, error) {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

func (d Date) String() string { return d.t.Format(dateLayout) }

// AddMonths advances the date by n calendar months, clamping to the last day
// of the target month when the source day does not exist there (Jan 31 + 1
// month is Feb 28 or 29, never Mar 2/3). time.AddDate alone rolls over, which
// is the wrong behavior for maintenance due dates.
func (d Date) AddMonths(n int) Date {
	year, month, day := d.t.Date()
	m := int(month) + n
	first := time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

// AddYears advances by n years with the same month-end clamp, so Feb 29 plus
// a non-leap year resolves to Feb 28.
func (d Date) AddYears(n int) Date {
	return d.AddMonths(n * 12)
}

func daysIn(year int, month time.Month) int {
	// First of the next month, minus one day.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysUntil returns the number of whole days from d to other (negative when
// other is in the past).
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}
