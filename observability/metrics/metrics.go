// Package metrics exposes prometheus counters and histograms for the
// calculation service. Every helper is a no-op until Init has run, so the
// engine and its tests never depend on a registry.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "indemnity_"

	ResultSuccess = "success"
	ResultError   = "error"
	ResultInvalid = "invalid"
)

var (
	registerOnce sync.Once

	calculationTotal   *prometheus.CounterVec
	calculationLatency *prometheus.HistogramVec

	ingestRows *prometheus.CounterVec
	seriesSize *prometheus.GaugeVec

	snapshotPublishTotal *prometheus.CounterVec
	snapshotLoadedAt     prometheus.Gauge
)

// Init registers the service metrics with the default registry.
func Init() {
	registerOnce.Do(func() {
		calculationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculation_total",
				Help: "Total calculations by kind and result",
			},
			[]string{"kind", "result"},
		)
		calculationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "calculation_latency_seconds",
				Help:    "Calculation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "result"},
		)

		ingestRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_rows_total",
				Help: "Dataset rows read by dataset and outcome",
			},
			[]string{"dataset", "outcome"},
		)
		seriesSize = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "series_entries",
				Help: "Entries in the published snapshot by dataset",
			},
			[]string{"dataset"},
		)

		snapshotPublishTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_publish_total",
				Help: "Snapshot reloads by result",
			},
			[]string{"result"},
		)
		snapshotLoadedAt = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "snapshot_loaded_timestamp_seconds",
				Help: "Unix time of the published snapshot",
			},
		)

		prometheus.MustRegister(
			calculationTotal,
			calculationLatency,
			ingestRows,
			seriesSize,
			snapshotPublishTotal,
			snapshotLoadedAt,
		)
	})
}

// ObserveCalculation records calculation duration and result.
func ObserveCalculation(kind, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if calculationTotal != nil {
		calculationTotal.WithLabelValues(kind, result).Inc()
	}
	if calculationLatency != nil {
		calculationLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// AddIngestRows counts accepted and dropped rows for a dataset.
func AddIngestRows(dataset string, accepted, dropped int) {
	if ingestRows == nil {
		return
	}
	if accepted > 0 {
		ingestRows.WithLabelValues(dataset, "accepted").Add(float64(accepted))
	}
	if dropped > 0 {
		ingestRows.WithLabelValues(dataset, "dropped").Add(float64(dropped))
	}
}

// SetSeriesSize reports the entries of a published dataset.
func SetSeriesSize(dataset string, n int) {
	if seriesSize != nil {
		seriesSize.WithLabelValues(dataset).Set(float64(n))
	}
}

// ObserveSnapshotPublish counts reloads and stamps the published snapshot.
func ObserveSnapshotPublish(result string, loadedAt time.Time) {
	if result == "" {
		result = ResultSuccess
	}
	if snapshotPublishTotal != nil {
		snapshotPublishTotal.WithLabelValues(result).Inc()
	}
	if snapshotLoadedAt != nil && result == ResultSuccess {
		snapshotLoadedAt.Set(float64(loadedAt.Unix()))
	}
}
