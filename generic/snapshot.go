package generic

import (
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SNAPSHOT - Frozen set of published datasets
// =============================================================================

// Snapshot holds every series a calculation reads. It is built once by a
// loader and never mutated; a calculation reads one Snapshot from start to
// finish, so a concurrent publish can never mix dataset versions.
type Snapshot struct {
	WageIndex    IndexSeries // RIPTE index levels
	PriceIndex   IndexSeries // IPC monthly variation, percent
	LendingRates RateSeries  // tasa activa BNA, monthly percent
	Floors       FloorSchedule

	// When the snapshot was assembled
	LoadedAt time.Time
}

// EmptySnapshot returns a snapshot with no data. Every rule degrades to its
// neutral value against it.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		WageIndex:  IndexSeries{Name: DatasetWageIndex},
		PriceIndex: IndexSeries{Name: DatasetPriceIndex},
		LoadedAt:   time.Now(),
	}
}

// Dataset names, used by loaders, stores and metrics.
const (
	DatasetWageIndex    = "ripte"
	DatasetPriceIndex   = "ipc"
	DatasetLendingRates = "tasa"
	DatasetFloors       = "pisos"
)

// Datasets lists the registry in display order.
var Datasets = []string{DatasetWageIndex, DatasetPriceIndex, DatasetLendingRates, DatasetFloors}

// IsDataset reports whether name is a registered dataset.
func IsDataset(name string) bool {
	for _, d := range Datasets {
		if d == name {
			return true
		}
	}
	return false
}

// =============================================================================
// SUMMARY - Latest published values
// =============================================================================

// SeriesSummary is the most recent value of one dataset.
type SeriesSummary struct {
	Dataset string
	Count   int
	Date    *CalendarDate
	To      *CalendarDate // rate intervals and floors only
	Value   *decimal.Decimal
	Note    string // floor norm reference
	InForce bool   // floors only: false when Date is the latest published record
}

// Summary reports the latest value of every dataset, and the floor in force
// on today. Without one, the latest published floor is reported instead.
func (s *Snapshot) Summary(today CalendarDate) []SeriesSummary {
	out := make([]SeriesSummary, 0, len(Datasets))

	for _, series := range []IndexSeries{s.WageIndex, s.PriceIndex} {
		sum := SeriesSummary{Dataset: series.Name, Count: series.Len()}
		if p, ok := series.Latest(); ok {
			date, value := p.Date, p.Value
			sum.Date, sum.Value = &date, &value
		}
		out = append(out, sum)
	}

	rate := SeriesSummary{Dataset: DatasetLendingRates, Count: s.LendingRates.Len()}
	if r, ok := s.LendingRates.Latest(); ok {
		from, to, value := r.From, r.To, r.MonthlyRate
		rate.Date, rate.To, rate.Value = &from, &to, &value
	}
	out = append(out, rate)

	floor := SeriesSummary{Dataset: DatasetFloors, Count: s.Floors.Len()}
	f, ok := s.Floors.InForce(today)
	floor.InForce = ok
	if !ok {
		f, ok = s.Floors.Latest()
	}
	if ok {
		from, value := f.From, f.Amount
		floor.Date, floor.To, floor.Value, floor.Note = &from, f.To, &value, f.NormReference
	}
	out = append(out, floor)

	return out
}

// =============================================================================
// SNAPSHOT HOLDER - Atomic publication
// =============================================================================

// SnapshotHolder publishes snapshots by pointer swap. Readers call Current
// once per calculation.
type SnapshotHolder struct {
	current atomic.Pointer[Snapshot]
}

// NewSnapshotHolder starts with initial, or an empty snapshot when nil.
func NewSnapshotHolder(initial *Snapshot) *SnapshotHolder {
	h := &SnapshotHolder{}
	if initial == nil {
		initial = EmptySnapshot()
	}
	h.current.Store(initial)
	return h
}

// Current returns the published snapshot.
func (h *SnapshotHolder) Current() *Snapshot {
	return h.current.Load()
}

// Publish replaces the snapshot and returns the previous one. A nil snapshot
// is ignored.
func (h *SnapshotHolder) Publish(next *Snapshot) *Snapshot {
	if next == nil {
		return h.Current()
	}
	return h.current.Swap(next)
}
