package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/laborcalc/indemnity-engine/generic"
)

// =============================================================================
// REPORT
// =============================================================================

const maxReportedDrops = 20

// Report summarises one dataset read.
type Report struct {
	Dataset  string
	Source   string
	Rows     int
	Accepted int
	Dropped  int
	Columns  map[string]string // logical column -> source header
	Drops    []Drop            // first rows dropped, capped
}

// Drop explains why a source row was skipped. Row is 1-based, header excluded.
type Drop struct {
	Row    int
	Reason string
}

func newReport(dataset string, t *Table) Report {
	return Report{Dataset: dataset, Rows: len(t.Rows)}
}

func (r *Report) drop(row int, format string, args ...any) {
	r.Dropped++
	if len(r.Drops) < maxReportedDrops {
		r.Drops = append(r.Drops, Drop{Row: row + 1, Reason: fmt.Sprintf(format, args...)})
	}
}

// =============================================================================
// WAGE INDEX
// =============================================================================

// BuildWageIndex reads a RIPTE table. Year and month columns are combined
// when both exist; otherwise a single date column is used.
func BuildWageIndex(t *Table) (generic.IndexSeries, Report, error) {
	rep := newReport(generic.DatasetWageIndex, t)
	res := newResolver(generic.DatasetWageIndex, t)

	yearCol, _ := res.resolve(wageYearColumn)
	monthCol, _ := res.resolve(wageMonthColumn)
	dateCol := -1
	if yearCol < 0 || monthCol < 0 {
		res.release(yearCol, wageYearColumn.Name)
		res.release(monthCol, wageMonthColumn.Name)
		yearCol, monthCol = -1, -1

		var err error
		if dateCol, err = res.resolve(wageDateColumn); err != nil {
			return generic.IndexSeries{}, rep, err
		}
	}
	valueCol, err := res.resolve(wageValueColumn)
	if err != nil {
		return generic.IndexSeries{}, rep, err
	}
	rep.Columns = res.found

	var points []generic.IndexPoint
	for i, row := range t.Rows {
		var at generic.CalendarDate
		if dateCol >= 0 {
			if at, err = t.parseDate(t.Cell(row, dateCol)); err != nil {
				rep.drop(i, "date: %v", err)
				continue
			}
		} else {
			var ok bool
			if at, ok = yearMonth(t.Cell(row, yearCol), t.Cell(row, monthCol)); !ok {
				rep.drop(i, "period %q/%q", t.Cell(row, yearCol), t.Cell(row, monthCol))
				continue
			}
		}

		value, err := generic.ParseNumber(t.Cell(row, valueCol))
		if err != nil {
			rep.drop(i, "value: %v", err)
			continue
		}
		points = append(points, generic.IndexPoint{Date: at.MonthBucket(), Value: value})
	}

	rep.Accepted = len(points)
	return generic.NewIndexSeries(generic.DatasetWageIndex, points), rep, nil
}

// yearMonth combines a year cell with a month cell holding a number or a
// Spanish / English month name.
func yearMonth(yearCell, monthCell string) (generic.CalendarDate, bool) {
	y, err := generic.ParseNumber(yearCell)
	if err != nil {
		return generic.CalendarDate{}, false
	}
	year := int(y.IntPart())
	month, ok := MonthNumber(monthCell)
	if !ok || year < 1900 || year > 2100 {
		return generic.CalendarDate{}, false
	}
	return generic.StartOfMonth(year, month), true
}

// MonthNumber reads "3", "03", "marzo", "Mar" or "MARZO 2024"-style prefixes.
func MonthNumber(cell string) (time.Month, bool) {
	if n, err := generic.ParseNumber(cell); err == nil {
		m := int(n.IntPart())
		if m >= 1 && m <= 12 && n.Equal(n.Truncate(0)) {
			return time.Month(m), true
		}
		return 0, false
	}
	if m, ok := generic.MonthFromName(cell); ok {
		return m, true
	}
	folded := generic.FoldText(cell)
	if len(folded) >= 3 {
		return generic.MonthFromName(folded[:3])
	}
	return 0, false
}

// =============================================================================
// PRICE INDEX
// =============================================================================

// BuildPriceIndex reads an IPC table of monthly percent variations.
func BuildPriceIndex(t *Table) (generic.IndexSeries, Report, error) {
	rep := newReport(generic.DatasetPriceIndex, t)
	res := newResolver(generic.DatasetPriceIndex, t)

	dateCol, err := res.resolve(priceDateColumn)
	if err != nil {
		return generic.IndexSeries{}, rep, err
	}
	valueCol, err := res.resolve(priceValueColumn)
	if err != nil {
		return generic.IndexSeries{}, rep, err
	}
	rep.Columns = res.found

	var points []generic.IndexPoint
	for i, row := range t.Rows {
		at, err := t.parseDate(t.Cell(row, dateCol))
		if err != nil {
			rep.drop(i, "date: %v", err)
			continue
		}
		value, err := generic.ParseNumber(t.Cell(row, valueCol))
		if err != nil {
			rep.drop(i, "variation: %v", err)
			continue
		}
		points = append(points, generic.IndexPoint{Date: at.MonthBucket(), Value: value})
	}

	rep.Accepted = len(points)
	return generic.NewIndexSeries(generic.DatasetPriceIndex, points), rep, nil
}

// =============================================================================
// LENDING RATES
// =============================================================================

// BuildLendingRates reads a tasa activa table. A row without a readable end
// date is valid until the end of its start month.
func BuildLendingRates(t *Table) (generic.RateSeries, Report, error) {
	rep := newReport(generic.DatasetLendingRates, t)
	res := newResolver(generic.DatasetLendingRates, t)

	fromCol, err := res.resolve(rateFromColumn)
	if err != nil {
		return generic.RateSeries{}, rep, err
	}
	toCol, _ := res.resolve(rateToColumn)
	rateCol, err := res.resolve(rateValueColumn)
	if err != nil {
		return generic.RateSeries{}, rep, err
	}
	rep.Columns = res.found

	var intervals []generic.RateInterval
	for i, row := range t.Rows {
		from, err := t.parseDate(t.Cell(row, fromCol))
		if err != nil {
			rep.drop(i, "from: %v", err)
			continue
		}
		to := generic.EndOfMonth(from.Year(), from.Month())
		if toCol >= 0 {
			if parsed, err := t.parseDate(t.Cell(row, toCol)); err == nil {
				to = parsed
			}
		}
		if to.Before(from) {
			rep.drop(i, "interval ends %s before it starts %s", to, from)
			continue
		}

		rate, err := generic.ParseNumber(t.Cell(row, rateCol))
		if err != nil {
			rep.drop(i, "rate: %v", err)
			continue
		}
		intervals = append(intervals, generic.RateInterval{From: from, To: to, MonthlyRate: rate})
	}

	rep.Accepted = len(intervals)
	return generic.NewRateSeries(intervals), rep, nil
}

// =============================================================================
// FLOORS
// =============================================================================

// BuildFloors reads a statutory floor table. An empty or unreadable end date
// leaves the record open-ended.
func BuildFloors(t *Table) (generic.FloorSchedule, Report, error) {
	rep := newReport(generic.DatasetFloors, t)
	res := newResolver(generic.DatasetFloors, t)

	fromCol, err := res.resolve(floorFromColumn)
	if err != nil {
		return generic.FloorSchedule{}, rep, err
	}
	toCol, _ := res.resolve(floorToColumn)
	amountCol, err := res.resolve(floorAmountColumn)
	if err != nil {
		return generic.FloorSchedule{}, rep, err
	}
	normCol, _ := res.resolve(floorNormColumn)
	linkCol, _ := res.resolve(floorLinkColumn)
	rep.Columns = res.found

	var records []generic.FloorRecord
	for i, row := range t.Rows {
		rec, reason := floorRecord(
			func(s string) (generic.CalendarDate, error) { return t.parseDate(s) },
			t.Cell(row, fromCol), t.Cell(row, toCol), t.Cell(row, amountCol),
			t.Cell(row, normCol), t.Cell(row, linkCol),
		)
		if reason != "" {
			rep.drop(i, "%s", reason)
			continue
		}
		records = append(records, rec)
	}

	rep.Accepted = len(records)
	return generic.NewFloorSchedule(records), rep, nil
}

func floorRecord(parse func(string) (generic.CalendarDate, error), from, to, amount, norm, link string) (generic.FloorRecord, string) {
	start, err := parse(from)
	if err != nil {
		return generic.FloorRecord{}, fmt.Sprintf("from: %v", err)
	}
	value, err := generic.ParseNumber(amount)
	if err != nil {
		return generic.FloorRecord{}, fmt.Sprintf("amount: %v", err)
	}

	rec := generic.FloorRecord{
		From:          start,
		Amount:        value,
		NormReference: cleanText(norm),
		Link:          cleanText(link),
	}
	if end, err := parse(to); err == nil {
		if end.Before(start) {
			return generic.FloorRecord{}, fmt.Sprintf("floor ends %s before it starts %s", end, start)
		}
		rec.To = &end
	}
	return rec, ""
}

// cleanText drops spreadsheet placeholders for missing text.
func cleanText(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "none", "null", "-":
		return ""
	}
	return strings.TrimSpace(s)
}

// =============================================================================
// DATE CELLS
// =============================================================================

// Spreadsheet day serials accepted as dates: 1900-01-01 .. 2099-12-31.
const maxDateSerial = 73050

// parseDate reads a date cell, converting spreadsheet serials first.
func (t *Table) parseDate(cell string) (generic.CalendarDate, error) {
	if t.DateSerials {
		if serial, err := strconv.ParseFloat(cell, 64); err == nil && serial >= 1 && serial <= maxDateSerial {
			if tm, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return generic.DateOf(tm), nil
			}
		}
	}
	return generic.ParseDate(cell)
}
