/*
store.go - Persistence interfaces for published datasets and calculations

PURPOSE:
  Defines the interface between the engine and the database. The engine
  itself never reads storage: a loader assembles a Snapshot from a
  SeriesRepository and publishes it through a SnapshotHolder.

KEY INTERFACES:
  SeriesRepository: replace-whole-dataset writes, snapshot reads
  CalculationLog:   append-only record of computed cases

REPLACE SEMANTICS:
  A dataset is replaced as a unit inside one database transaction. A
  published series is never edited row by row; the next snapshot simply
  carries the new version.

IMPLEMENTATIONS:
  - store/sqlite: SQLite (default)
  - store/postgres: PostgreSQL via pgx
  - generic/store/memory.go: In-memory for testing

SEE ALSO:
  - snapshot.go: Snapshot and SnapshotHolder
  - api/refresher.go: periodic reload and publish
*/
package generic

import (
	"context"
	"time"
)

// =============================================================================
// SERIES REPOSITORY
// =============================================================================

type SeriesRepository interface {
	// ReplaceWageIndex swaps the whole wage index dataset.
	ReplaceWageIndex(ctx context.Context, s IndexSeries) error

	// ReplacePriceIndex swaps the whole price index dataset.
	ReplacePriceIndex(ctx context.Context, s IndexSeries) error

	// ReplaceLendingRates swaps the whole lending rate dataset.
	ReplaceLendingRates(ctx context.Context, s RateSeries) error

	// ReplaceFloors swaps the whole floor schedule.
	ReplaceFloors(ctx context.Context, s FloorSchedule) error

	// LoadSnapshot reads every dataset into a new immutable Snapshot.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
}

// =============================================================================
// CALCULATION LOG
// =============================================================================

// CalculationKind names the policy that produced a record.
type CalculationKind string

const (
	KindSeverance  CalculationKind = "severance"
	KindInjury     CalculationKind = "injury"
	KindBaseIncome CalculationKind = "base_income"
)

// CalculationRecord is an immutable audit entry. Input and Result hold the
// JSON documents exchanged with the caller.
type CalculationRecord struct {
	ID        string
	Kind      CalculationKind
	CreatedAt time.Time
	Input     []byte
	Result    []byte
}

type CalculationLog interface {
	// RecordCalculation appends a record. IDs are assigned by the caller.
	RecordCalculation(ctx context.Context, rec CalculationRecord) error

	// GetCalculation returns ErrCalculationNotFound for unknown ids.
	GetCalculation(ctx context.Context, id string) (*CalculationRecord, error)

	// ListCalculations returns the newest records first.
	ListCalculations(ctx context.Context, limit int) ([]CalculationRecord, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	SeriesRepository
	CalculationLog
	Close() error
}
