package generic

// =============================================================================
// PERIOD - Closed date range used by every intersection rule
// =============================================================================

// Period is the closed range [Start, End]. Both ends count as days.
//
// Examples:
//   - Update window: dismissal date .. liquidation date
//   - Lending-rate validity: desde .. hasta
//   - Semester: Jan 1 .. dismissal date
type Period struct {
	Start CalendarDate
	End   CalendarDate
}

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(d CalendarDate) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// IsValid reports whether End is not before Start.
func (p Period) IsValid() bool {
	return !p.End.Before(p.Start)
}

// Days returns the inclusive day count, 0 for an inverted period.
func (p Period) Days() int {
	if !p.IsValid() {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Intersect returns the overlap of two periods and whether it is non-empty.
func (p Period) Intersect(other Period) (Period, bool) {
	overlap := Period{
		Start: MaxDate(p.Start, other.Start),
		End:   MinDate(p.End, other.End),
	}
	return overlap, overlap.IsValid()
}

// Months returns the month buckets from Start's month to End's month inclusive.
func (p Period) Months() []CalendarDate {
	if !p.IsValid() {
		return nil
	}
	var months []CalendarDate
	last := p.End.MonthBucket()
	for m := p.Start.MonthBucket(); m.BeforeOrEqual(last); m = m.AddMonths(1) {
		months = append(months, m)
	}
	return months
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
