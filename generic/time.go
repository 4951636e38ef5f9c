package generic

import (
	"time"
)

// =============================================================================
// CALENDAR DATE - Day-granularity date (every legal computation is in days)
// =============================================================================

// CalendarDate is a civil date at UTC midnight. Month buckets (index values
// published per month) carry day 1.
type CalendarDate struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) CalendarDate {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() CalendarDate {
	return DateOf(time.Now())
}

// Comparison
func (d CalendarDate) Before(other CalendarDate) bool        { return d.Time.Before(other.Time) }
func (d CalendarDate) Equal(other CalendarDate) bool         { return d.Time.Equal(other.Time) }
func (d CalendarDate) After(other CalendarDate) bool         { return d.Time.After(other.Time) }
func (d CalendarDate) BeforeOrEqual(other CalendarDate) bool { return !d.After(other) }
func (d CalendarDate) AfterOrEqual(other CalendarDate) bool  { return !d.Before(other) }

// Arithmetic
func (d CalendarDate) AddDays(n int) CalendarDate   { return CalendarDate{Time: d.Time.AddDate(0, 0, n)} }
func (d CalendarDate) AddMonths(n int) CalendarDate { return CalendarDate{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d CalendarDate) Year() int         { return d.Time.Year() }
func (d CalendarDate) Month() time.Month { return d.Time.Month() }
func (d CalendarDate) Day() int          { return d.Time.Day() }
func (d CalendarDate) IsZero() bool      { return d.Time.IsZero() }

// MonthBucket returns the first day of the date's month.
func (d CalendarDate) MonthBucket() CalendarDate { return StartOfMonth(d.Year(), d.Month()) }

// DaysInMonth returns the length of the date's month.
func (d CalendarDate) DaysInMonth() int { return EndOfMonth(d.Year(), d.Month()).Day() }

func (d CalendarDate) IsLastDayOfMonth() bool { return d.Day() == d.DaysInMonth() }

// SameMonth reports whether both dates fall in the same calendar month.
func (d CalendarDate) SameMonth(other CalendarDate) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

func (d CalendarDate) String() string {
	return d.Time.Format("2006-01-02")
}

// Display renders the date the way Argentine documents do: 16/11/2025.
func (d CalendarDate) Display() string {
	return d.Time.Format("02/01/2006")
}

// MonthKey renders the month bucket as 2025-11.
func (d CalendarDate) MonthKey() string {
	return d.Time.Format("2006-01")
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween is the exclusive day difference (to - from).
func DaysBetween(from, to CalendarDate) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) CalendarDate { return NewDate(year, month, 1) }
func EndOfMonth(year int, month time.Month) CalendarDate {
	return CalendarDate{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}

// MinDate and MaxDate return the earlier / later of two dates.
func MinDate(a, b CalendarDate) CalendarDate {
	if a.Before(b) {
		return a
	}
	return b
}

func MaxDate(a, b CalendarDate) CalendarDate {
	if a.After(b) {
		return a
	}
	return b
}
