package generic_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborcalc/indemnity-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, day int) generic.CalendarDate { return generic.NewDate(y, m, day) }

func ptr(c generic.CalendarDate) *generic.CalendarDate { return &c }

func wageIndex() generic.IndexSeries {
	return generic.NewIndexSeries(generic.DatasetWageIndex, []generic.IndexPoint{
		{Date: date(2024, time.March, 1), Value: d("130")},
		{Date: date(2024, time.January, 1), Value: d("100")},
		{Date: date(2024, time.February, 1), Value: d("110")},
		{Date: date(2024, time.April, 1), Value: d("150")},
	})
}

// =============================================================================
// INDEX SERIES
// =============================================================================

func TestIndexSeries_SortedOnConstruction(t *testing.T) {
	s := wageIndex()
	require.Equal(t, 4, s.Len())
	for i := 1; i < s.Len(); i++ {
		assert.False(t, s.Points[i].Date.Before(s.Points[i-1].Date))
	}
}

func TestIndexSeries_AtOrBefore(t *testing.T) {
	s := wageIndex()

	tests := []struct {
		name string
		at   generic.CalendarDate
		want string
	}{
		{"exact date", date(2024, time.February, 1), "110"},
		{"between entries", date(2024, time.February, 20), "110"},
		{"after last", date(2030, time.January, 1), "150"},
		{"before first clamps left", date(2000, time.January, 1), "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := s.AtOrBefore(tt.at)
			require.True(t, ok)
			assert.True(t, p.Value.Equal(d(tt.want)), "got %s", p.Value)
		})
	}
}

func TestIndexSeries_AtOrBefore_NeverAfterDate(t *testing.T) {
	// GIVEN: a non-empty series
	// WHEN: looking up every day across its range
	// THEN: the result is a member dated on or before the query, or the
	//       earliest entry when the query precedes the series
	s := wageIndex()
	first := s.Points[0]
	for q := date(2023, time.December, 1); q.Before(date(2024, time.June, 1)); q = q.AddDays(1) {
		p, ok := s.AtOrBefore(q)
		require.True(t, ok)
		if q.Before(first.Date) {
			assert.Equal(t, first, p)
			continue
		}
		assert.False(t, p.Date.After(q), "lookup %s returned %s", q, p.Date)
		assert.Contains(t, s.Points, p)
	}
}

func TestIndexSeries_Empty(t *testing.T) {
	var s generic.IndexSeries
	_, ok := s.AtOrBefore(date(2024, time.January, 1))
	assert.False(t, ok)
	_, ok = s.Latest()
	assert.False(t, ok)
}

func TestIndexSeries_DuplicatesKept(t *testing.T) {
	// GIVEN: two rows for the same month
	// WHEN: the series is built
	// THEN: both are kept, and the lookup returns the last ingested one
	s := generic.NewIndexSeries("ripte", []generic.IndexPoint{
		{Date: date(2024, time.January, 1), Value: d("100")},
		{Date: date(2024, time.January, 1), Value: d("101")},
	})
	assert.Equal(t, 2, s.Len())
	p, _ := s.AtOrBefore(date(2024, time.January, 15))
	assert.True(t, p.Value.Equal(d("101")))
}

func TestIndexSeries_AtAndBetween(t *testing.T) {
	s := wageIndex()

	p, ok := s.At(date(2024, time.March, 17))
	require.True(t, ok)
	assert.True(t, p.Value.Equal(d("130")))

	_, ok = s.At(date(2023, time.March, 1))
	assert.False(t, ok)

	between := s.Between(date(2024, time.February, 1), date(2024, time.March, 1))
	assert.Len(t, between, 2)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.True(t, latest.Value.Equal(d("150")))
}

// =============================================================================
// FLOOR SCHEDULE
// =============================================================================

func floors() generic.FloorSchedule {
	return generic.NewFloorSchedule([]generic.FloorRecord{
		{From: date(2023, time.March, 1), To: nil, Amount: d("300000"), NormReference: "Res. 2/23"},
		{From: date(2022, time.March, 1), To: ptr(date(2022, time.August, 31)), Amount: d("100000"), NormReference: "Res. 1/22"},
		{From: date(2022, time.September, 1), To: ptr(date(2023, time.February, 28)), Amount: d("150000"), NormReference: "Res. 5/22"},
		{From: date(2024, time.March, 1), To: nil, Amount: d("500000"), NormReference: "Res. 3/24"},
	})
}

func TestFloorSchedule_Lookup(t *testing.T) {
	s := floors()

	tests := []struct {
		name  string
		at    generic.CalendarDate
		found bool
		want  string
	}{
		{"containing closed record", date(2022, time.May, 10), true, "100000"},
		{"closed record upper bound inclusive", date(2023, time.February, 28), true, "150000"},
		{"open-ended fallback", date(2023, time.July, 1), true, "300000"},
		{"latest open-ended record wins", date(2025, time.January, 1), true, "500000"},
		{"before every record", date(2020, time.January, 1), false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := s.Lookup(tt.at)
			require.Equal(t, tt.found, ok)
			if tt.found {
				assert.True(t, f.Amount.Equal(d(tt.want)), "got %s", f.Amount)
			}
		})
	}
}

func TestFloorSchedule_InForce(t *testing.T) {
	f, ok := floors().InForce(date(2025, time.June, 1))
	require.True(t, ok)
	assert.Equal(t, "Res. 3/24", f.NormReference)
	assert.True(t, f.IsOpenEnded())

	_, ok = generic.FloorSchedule{}.InForce(date(2025, time.June, 1))
	assert.False(t, ok)
}

func TestFloorSchedule_NothingInForce(t *testing.T) {
	// GIVEN: only closed records, the last one expired
	s := generic.NewFloorSchedule([]generic.FloorRecord{
		{From: date(2022, time.March, 1), To: ptr(date(2022, time.August, 31)), Amount: d("100000"), NormReference: "Res. 1/22"},
		{From: date(2022, time.September, 1), To: ptr(date(2023, time.February, 28)), Amount: d("150000"), NormReference: "Res. 5/22"},
	})

	// WHEN: asking after expiry and before the first record
	_, afterExpiry := s.InForce(date(2024, time.June, 1))
	_, beforeStart := s.InForce(date(2021, time.January, 1))

	// THEN: no floor is in force, the latest record is still reachable
	assert.False(t, afterExpiry)
	assert.False(t, beforeStart)
	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "Res. 5/22", latest.NormReference)
}

// =============================================================================
// SNAPSHOT HOLDER
// =============================================================================

func TestSnapshotHolder_PublishSwapsWholeSnapshot(t *testing.T) {
	// GIVEN: readers holding the first snapshot
	// WHEN: a new snapshot is published concurrently
	// THEN: each reader sees either the old or the new snapshot, never a mix
	first := &generic.Snapshot{WageIndex: wageIndex()}
	second := &generic.Snapshot{WageIndex: generic.NewIndexSeries("ripte", []generic.IndexPoint{
		{Date: date(2024, time.January, 1), Value: d("200")},
	})}
	holder := generic.NewSnapshotHolder(first)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := holder.Current()
			n := snap.WageIndex.Len()
			assert.True(t, n == 4 || n == 1)
		}()
	}
	prev := holder.Publish(second)
	wg.Wait()

	assert.Same(t, first, prev)
	assert.Same(t, second, holder.Current())
	assert.Equal(t, 4, first.WageIndex.Len(), "published snapshot must not change")
}

func TestSnapshotHolder_NilInitialIsEmpty(t *testing.T) {
	holder := generic.NewSnapshotHolder(nil)
	require.NotNil(t, holder.Current())
	assert.True(t, holder.Current().WageIndex.IsEmpty())

	holder.Publish(nil)
	assert.NotNil(t, holder.Current())
}

func TestSnapshot_Summary(t *testing.T) {
	snap := &generic.Snapshot{
		WageIndex:  wageIndex(),
		PriceIndex: generic.NewIndexSeries(generic.DatasetPriceIndex, nil),
		LendingRates: generic.NewRateSeries([]generic.RateInterval{
			{From: date(2024, time.January, 1), To: date(2024, time.January, 31), MonthlyRate: d("4")},
			{From: date(2024, time.February, 1), To: date(2024, time.February, 29), MonthlyRate: d("3.5")},
		}),
		Floors: floors(),
	}

	sum := snap.Summary(date(2025, time.January, 1))
	require.Len(t, sum, 4)

	assert.Equal(t, generic.DatasetWageIndex, sum[0].Dataset)
	require.NotNil(t, sum[0].Value)
	assert.True(t, sum[0].Value.Equal(d("150")))

	assert.Equal(t, generic.DatasetPriceIndex, sum[1].Dataset)
	assert.Nil(t, sum[1].Value)

	assert.Equal(t, generic.DatasetLendingRates, sum[2].Dataset)
	assert.True(t, sum[2].Value.Equal(d("3.5")))

	assert.Equal(t, generic.DatasetFloors, sum[3].Dataset)
	assert.Equal(t, "Res. 3/24", sum[3].Note)
	assert.True(t, sum[3].InForce)
}

func TestSnapshot_SummaryFloorExpired(t *testing.T) {
	snap := &generic.Snapshot{Floors: generic.NewFloorSchedule([]generic.FloorRecord{
		{From: date(2022, time.September, 1), To: ptr(date(2023, time.February, 28)), Amount: d("150000"), NormReference: "Res. 5/22"},
	})}

	sum := snap.Summary(date(2024, time.June, 1))

	floor := sum[3]
	assert.Equal(t, "Res. 5/22", floor.Note, "latest published floor")
	assert.False(t, floor.InForce)
}
