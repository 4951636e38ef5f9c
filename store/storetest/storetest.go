// Package storetest holds the behaviour every generic.Store must share. Each
// backend runs it from its own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborcalc/indemnity-engine/generic"
)

// Run exercises a fresh, empty store returned by open.
func Run(t *testing.T, open func(t *testing.T) generic.Store) {
	t.Run("EmptySnapshot", func(t *testing.T) { testEmptySnapshot(t, open(t)) })
	t.Run("ReplaceAndLoad", func(t *testing.T) { testReplaceAndLoad(t, open(t)) })
	t.Run("ReplaceIsWhole", func(t *testing.T) { testReplaceIsWhole(t, open(t)) })
	t.Run("CalculationLog", func(t *testing.T) { testCalculationLog(t, open(t)) })
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, day int) generic.CalendarDate { return generic.NewDate(y, m, day) }

func testEmptySnapshot(t *testing.T, s generic.Store) {
	snap, err := s.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.WageIndex.IsEmpty())
	assert.True(t, snap.PriceIndex.IsEmpty())
	assert.True(t, snap.LendingRates.IsEmpty())
	assert.True(t, snap.Floors.IsEmpty())
}

func testReplaceAndLoad(t *testing.T, s generic.Store) {
	ctx := context.Background()

	// GIVEN: every dataset replaced, out of order and with exact decimals
	require.NoError(t, s.ReplaceWageIndex(ctx, generic.NewIndexSeries(generic.DatasetWageIndex, []generic.IndexPoint{
		{Date: date(2024, time.February, 1), Value: d("110.123456")},
		{Date: date(2024, time.January, 1), Value: d("100")},
	})))
	require.NoError(t, s.ReplacePriceIndex(ctx, generic.NewIndexSeries(generic.DatasetPriceIndex, []generic.IndexPoint{
		{Date: date(2024, time.January, 1), Value: d("20.6")},
	})))
	require.NoError(t, s.ReplaceLendingRates(ctx, generic.NewRateSeries([]generic.RateInterval{
		{From: date(2024, time.January, 1), To: date(2024, time.January, 31), MonthlyRate: d("4.5")},
		{From: date(2024, time.January, 15), To: date(2024, time.February, 15), MonthlyRate: d("3.982")},
	})))
	to := date(2024, time.February, 29)
	require.NoError(t, s.ReplaceFloors(ctx, generic.NewFloorSchedule([]generic.FloorRecord{
		{From: date(2023, time.September, 1), To: &to, Amount: d("35000000"), NormReference: "Res. SRT 40/2023"},
		{From: date(2024, time.March, 1), Amount: d("55000000"), NormReference: "Res. SRT 5/2024", Link: "https://example.org/5"},
	})))

	// WHEN: loading a snapshot
	snap, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)

	// THEN: everything round-trips in date order
	require.Equal(t, 2, snap.WageIndex.Len())
	assert.Equal(t, date(2024, time.January, 1), snap.WageIndex.Points[0].Date)
	assert.True(t, snap.WageIndex.Points[1].Value.Equal(d("110.123456")))
	assert.Equal(t, generic.DatasetWageIndex, snap.WageIndex.Name)

	require.Equal(t, 1, snap.PriceIndex.Len())
	assert.True(t, snap.PriceIndex.Points[0].Value.Equal(d("20.6")))

	require.Equal(t, 2, snap.LendingRates.Len(), "overlapping intervals are both kept")
	assert.Equal(t, date(2024, time.February, 15), snap.LendingRates.Intervals[1].To)

	require.Equal(t, 2, snap.Floors.Len())
	require.NotNil(t, snap.Floors.Records[0].To)
	assert.Equal(t, to, *snap.Floors.Records[0].To)
	assert.True(t, snap.Floors.Records[1].IsOpenEnded())
	assert.Equal(t, "https://example.org/5", snap.Floors.Records[1].Link)
	assert.False(t, snap.LoadedAt.IsZero())
}

func testReplaceIsWhole(t *testing.T, s generic.Store) {
	ctx := context.Background()
	require.NoError(t, s.ReplaceWageIndex(ctx, generic.NewIndexSeries(generic.DatasetWageIndex, []generic.IndexPoint{
		{Date: date(2024, time.January, 1), Value: d("100")},
		{Date: date(2024, time.February, 1), Value: d("110")},
	})))
	before, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, s.ReplaceWageIndex(ctx, generic.NewIndexSeries(generic.DatasetWageIndex, []generic.IndexPoint{
		{Date: date(2025, time.January, 1), Value: d("500")},
	})))
	after, err := s.LoadSnapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, after.WageIndex.Len())
	assert.Equal(t, 2, before.WageIndex.Len(), "earlier snapshots are unaffected")
}

func testCalculationLog(t *testing.T, s generic.Store) {
	ctx := context.Background()
	base := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.RecordCalculation(ctx, generic.CalculationRecord{
			ID:        id,
			Kind:      generic.KindSeverance,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Input:     []byte(`{"n":` + string(rune('1'+i)) + `}`),
			Result:    []byte(`{}`),
		}))
	}

	rec, err := s.GetCalculation(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, generic.KindSeverance, rec.Kind)
	assert.JSONEq(t, `{"n":2}`, string(rec.Input))
	assert.True(t, rec.CreatedAt.Equal(base.Add(time.Minute)))

	_, err = s.GetCalculation(ctx, "missing")
	assert.ErrorIs(t, err, generic.ErrCalculationNotFound)

	list, err := s.ListCalculations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID, "newest first")
	assert.Equal(t, "b", list[1].ID)
}
