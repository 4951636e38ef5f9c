// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/laborcalc/indemnity-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	wageIndex    generic.IndexSeries
	priceIndex   generic.IndexSeries
	lendingRates generic.RateSeries
	floors       generic.FloorSchedule
	calculations []generic.CalculationRecord
	byID         map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		wageIndex:  generic.IndexSeries{Name: generic.DatasetWageIndex},
		priceIndex: generic.IndexSeries{Name: generic.DatasetPriceIndex},
		byID:       make(map[string]int),
	}
}

func (m *Memory) ReplaceWageIndex(_ context.Context, s generic.IndexSeries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wageIndex = generic.NewIndexSeries(generic.DatasetWageIndex, s.Points)
	return nil
}

func (m *Memory) ReplacePriceIndex(_ context.Context, s generic.IndexSeries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceIndex = generic.NewIndexSeries(generic.DatasetPriceIndex, s.Points)
	return nil
}

func (m *Memory) ReplaceLendingRates(_ context.Context, s generic.RateSeries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lendingRates = generic.NewRateSeries(s.Intervals)
	return nil
}

func (m *Memory) ReplaceFloors(_ context.Context, s generic.FloorSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.floors = generic.NewFloorSchedule(s.Records)
	return nil
}

// LoadSnapshot copies the current datasets. The constructors copy slices,
// so later replacements never reach a published snapshot.
func (m *Memory) LoadSnapshot(_ context.Context) (*generic.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &generic.Snapshot{
		WageIndex:    generic.NewIndexSeries(generic.DatasetWageIndex, m.wageIndex.Points),
		PriceIndex:   generic.NewIndexSeries(generic.DatasetPriceIndex, m.priceIndex.Points),
		LendingRates: generic.NewRateSeries(m.lendingRates.Intervals),
		Floors:       generic.NewFloorSchedule(m.floors.Records),
		LoadedAt:     time.Now(),
	}, nil
}

// =============================================================================
// CALCULATION LOG
// =============================================================================

func (m *Memory) RecordCalculation(_ context.Context, rec generic.CalculationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[rec.ID] = len(m.calculations)
	m.calculations = append(m.calculations, rec)
	return nil
}

func (m *Memory) GetCalculation(_ context.Context, id string) (*generic.CalculationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byID[id]
	if !ok {
		return nil, generic.ErrCalculationNotFound
	}
	rec := m.calculations[i]
	return &rec, nil
}

func (m *Memory) ListCalculations(_ context.Context, limit int) ([]generic.CalculationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]generic.CalculationRecord, len(m.calculations))
	copy(out, m.calculations)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
