package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHelpersBeforeInit(t *testing.T) {
	if calculationTotal != nil {
		t.Skip("already initialized")
	}
	assert.NotPanics(t, func() {
		ObserveCalculation("severance", "", time.Millisecond)
		AddIngestRows("ripte", 3, 1)
		SetSeriesSize("ripte", 3)
		ObserveSnapshotPublish(ResultError, time.Now())
	})
}

func TestObserve(t *testing.T) {
	Init()
	Init()

	// GIVEN: current counter values
	calcBefore := testutil.ToFloat64(calculationTotal.WithLabelValues("injury", ResultSuccess))
	droppedBefore := testutil.ToFloat64(ingestRows.WithLabelValues("tasa", "dropped"))

	// WHEN: recording one calculation, one import and one publish
	ObserveCalculation("injury", "", 20*time.Millisecond)
	AddIngestRows("tasa", 10, 2)
	SetSeriesSize("tasa", 10)
	loadedAt := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	ObserveSnapshotPublish(ResultSuccess, loadedAt)

	// THEN: the collectors reflect them
	assert.Equal(t, calcBefore+1, testutil.ToFloat64(calculationTotal.WithLabelValues("injury", ResultSuccess)))
	assert.Equal(t, droppedBefore+2, testutil.ToFloat64(ingestRows.WithLabelValues("tasa", "dropped")))
	assert.Equal(t, float64(10), testutil.ToFloat64(seriesSize.WithLabelValues("tasa")))
	assert.Equal(t, float64(loadedAt.Unix()), testutil.ToFloat64(snapshotLoadedAt))

	// A failed publish leaves the timestamp alone.
	ObserveSnapshotPublish(ResultError, loadedAt.Add(time.Hour))
	assert.Equal(t, float64(loadedAt.Unix()), testutil.ToFloat64(snapshotLoadedAt))
}
