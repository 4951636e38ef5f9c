package generic

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INDEX SERIES - Monthly published index values (RIPTE, IPC)
// =============================================================================

// IndexPoint is one published value. For the wage index Value is the index
// level; for the price index it is the monthly variation in percent.
type IndexPoint struct {
	Date  CalendarDate
	Value decimal.Decimal
}

// IndexSeries is sorted ascending by date. Equal dates keep ingestion order.
type IndexSeries struct {
	Name   string
	Points []IndexPoint
}

// NewIndexSeries copies and sorts points. The sort is stable, duplicates are
// kept.
func NewIndexSeries(name string, points []IndexPoint) IndexSeries {
	sorted := make([]IndexPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return IndexSeries{Name: name, Points: sorted}
}

func (s IndexSeries) Len() int      { return len(s.Points) }
func (s IndexSeries) IsEmpty() bool { return len(s.Points) == 0 }

// AtOrBefore returns the entry with the greatest date <= d. When d precedes
// every entry the earliest entry is returned (clamp-left). ok is false only
// for an empty series. Among duplicate dates the last ingested wins.
func (s IndexSeries) AtOrBefore(d CalendarDate) (IndexPoint, bool) {
	if s.IsEmpty() {
		return IndexPoint{}, false
	}
	i := sort.Search(len(s.Points), func(i int) bool {
		return s.Points[i].Date.After(d)
	})
	if i == 0 {
		return s.Points[0], true
	}
	return s.Points[i-1], true
}

// At returns the entry published for d's month, without clamping.
func (s IndexSeries) At(month CalendarDate) (IndexPoint, bool) {
	var (
		found IndexPoint
		ok    bool
	)
	for _, p := range s.Points {
		if p.Date.SameMonth(month) {
			found, ok = p, true
		}
	}
	return found, ok
}

// Latest returns the most recent entry.
func (s IndexSeries) Latest() (IndexPoint, bool) {
	if s.IsEmpty() {
		return IndexPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Between returns the entries with from <= date <= to.
func (s IndexSeries) Between(from, to CalendarDate) []IndexPoint {
	p := Period{Start: from, End: to}
	var out []IndexPoint
	for _, pt := range s.Points {
		if p.Contains(pt.Date) {
			out = append(out, pt)
		}
	}
	return out
}

// =============================================================================
// RATE SERIES - Bank lending rate validity intervals
// =============================================================================

// RateInterval is a monthly rate in percent valid on [From, To].
type RateInterval struct {
	From        CalendarDate
	To          CalendarDate
	MonthlyRate decimal.Decimal
}

func (r RateInterval) Period() Period { return Period{Start: r.From, End: r.To} }

// RateSeries keeps intervals sorted by From. Overlapping intervals are kept
// as published.
type RateSeries struct {
	Intervals []RateInterval
}

func NewRateSeries(intervals []RateInterval) RateSeries {
	sorted := make([]RateInterval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From.Before(sorted[j].From)
	})
	return RateSeries{Intervals: sorted}
}

func (s RateSeries) Len() int      { return len(s.Intervals) }
func (s RateSeries) IsEmpty() bool { return len(s.Intervals) == 0 }

// Latest returns the interval that starts last.
func (s RateSeries) Latest() (RateInterval, bool) {
	if s.IsEmpty() {
		return RateInterval{}, false
	}
	return s.Intervals[len(s.Intervals)-1], true
}

// =============================================================================
// FLOOR SCHEDULE - Statutory minimum compensation amounts
// =============================================================================

// FloorRecord is a minimum amount in force from From until To. A nil To
// means the record is still in force.
type FloorRecord struct {
	From          CalendarDate
	To            *CalendarDate
	Amount        decimal.Decimal
	NormReference string
	Link          string
}

func (f FloorRecord) IsOpenEnded() bool { return f.To == nil }

// FloorSchedule keeps records sorted by From.
type FloorSchedule struct {
	Records []FloorRecord
}

func NewFloorSchedule(records []FloorRecord) FloorSchedule {
	sorted := make([]FloorRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].From.Before(sorted[j].From)
	})
	return FloorSchedule{Records: sorted}
}

func (s FloorSchedule) Len() int      { return len(s.Records) }
func (s FloorSchedule) IsEmpty() bool { return len(s.Records) == 0 }

// Lookup returns the first closed record containing d. Failing that, the
// open-ended record with the greatest From <= d. ok is false when neither
// exists.
func (s FloorSchedule) Lookup(d CalendarDate) (FloorRecord, bool) {
	for _, r := range s.Records {
		if r.To != nil && (Period{Start: r.From, End: *r.To}).Contains(d) {
			return r, true
		}
	}

	var (
		best  FloorRecord
		found bool
	)
	for _, r := range s.Records {
		if r.To == nil && r.From.BeforeOrEqual(d) {
			best, found = r, true
		}
	}
	return best, found
}

// InForce returns the floor applicable today. ok is false when every record
// has expired or starts later.
func (s FloorSchedule) InForce(today CalendarDate) (FloorRecord, bool) {
	return s.Lookup(today)
}

// Latest returns the record with the greatest From.
func (s FloorSchedule) Latest() (FloorRecord, bool) {
	if s.IsEmpty() {
		return FloorRecord{}, false
	}
	return s.Records[len(s.Records)-1], true
}
