/*
refresher.go - Periodic dataset snapshot reload

PURPOSE:
  Periodically reads every dataset from the repository and publishes a new
  immutable snapshot. Calculations in flight keep the snapshot they started
  with; the next request sees the new one.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Reloads immediately on start, then on every tick
  - A failed reload keeps the previous snapshot published
  - Uploads and the admin endpoint call Reload directly

CONFIGURATION:
  - Interval: How often to reload (default: 15 minutes)
  - Enabled: Whether the ticker runs (default: true)

USAGE:
  refresher := NewSnapshotRefresher(store, holder, logger)
  refresher.Start()
  // ... later
  refresher.Stop()

SEE ALSO:
  - generic/snapshot.go: SnapshotHolder
  - handlers.go: Reload and UploadDataset endpoints
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/observability/metrics"
)

// SnapshotRefresher reloads and publishes dataset snapshots.
type SnapshotRefresher struct {
	Repo     generic.SeriesRepository
	Holder   *generic.SnapshotHolder
	Interval time.Duration
	Enabled  bool
	Timeout  time.Duration
	Logger   *zap.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	// reloadMu serialises reloads so publishes happen in load order.
	reloadMu sync.Mutex
}

// NewSnapshotRefresher creates a refresher with default settings.
func NewSnapshotRefresher(repo generic.SeriesRepository, holder *generic.SnapshotHolder, logger *zap.Logger) *SnapshotRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotRefresher{
		Repo:     repo,
		Holder:   holder,
		Interval: 15 * time.Minute,
		Enabled:  true,
		Timeout:  30 * time.Second,
		Logger:   logger,
	}
}

// Start begins the periodic reload.
func (sr *SnapshotRefresher) Start() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if !sr.Enabled {
		sr.Logger.Info("snapshot refresher disabled")
		return
	}
	if sr.ticker != nil {
		return
	}

	sr.ticker = time.NewTicker(sr.Interval)
	sr.stop = make(chan struct{})
	sr.wg.Add(1)

	go sr.run()

	sr.Logger.Info("snapshot refresher started", zap.Duration("interval", sr.Interval))
}

// Stop halts the ticker and waits for a reload in progress.
func (sr *SnapshotRefresher) Stop() {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	if sr.ticker != nil {
		sr.ticker.Stop()
		close(sr.stop)
		sr.wg.Wait()
		sr.ticker = nil
		sr.Logger.Info("snapshot refresher stopped")
	}
}

func (sr *SnapshotRefresher) run() {
	defer sr.wg.Done()

	sr.reloadLogged()

	for {
		select {
		case <-sr.ticker.C:
			sr.reloadLogged()
		case <-sr.stop:
			return
		}
	}
}

func (sr *SnapshotRefresher) reloadLogged() {
	ctx, cancel := context.WithTimeout(context.Background(), sr.Timeout)
	defer cancel()
	if _, err := sr.Reload(ctx); err != nil {
		sr.Logger.Error("snapshot reload failed, keeping previous", zap.Error(err))
	}
}

// Reload loads a snapshot and publishes it. On error the published snapshot
// is left unchanged.
func (sr *SnapshotRefresher) Reload(ctx context.Context) (*generic.Snapshot, error) {
	sr.reloadMu.Lock()
	defer sr.reloadMu.Unlock()

	snap, err := sr.Repo.LoadSnapshot(ctx)
	if err != nil {
		metrics.ObserveSnapshotPublish(metrics.ResultError, time.Time{})
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	sr.Holder.Publish(snap)

	metrics.SetSeriesSize(generic.DatasetWageIndex, snap.WageIndex.Len())
	metrics.SetSeriesSize(generic.DatasetPriceIndex, snap.PriceIndex.Len())
	metrics.SetSeriesSize(generic.DatasetLendingRates, snap.LendingRates.Len())
	metrics.SetSeriesSize(generic.DatasetFloors, snap.Floors.Len())
	metrics.ObserveSnapshotPublish(metrics.ResultSuccess, snap.LoadedAt)

	sr.Logger.Debug("snapshot published",
		zap.Int(generic.DatasetWageIndex, snap.WageIndex.Len()),
		zap.Int(generic.DatasetPriceIndex, snap.PriceIndex.Len()),
		zap.Int(generic.DatasetLendingRates, snap.LendingRates.Len()),
		zap.Int(generic.DatasetFloors, snap.Floors.Len()))
	return snap, nil
}
