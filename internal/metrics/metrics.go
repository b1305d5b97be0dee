// Package metrics holds the Prometheus collectors for the expkit utilities.
//
// Collectors live on a dedicated Registry rather than the global default one, so
// embedding programs decide whether and how to expose them.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the registry every expkit collector is registered with.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	RecordsRead = factory.NewCounter(prometheus.CounterOpts{
		Name: "expkit_jsonl_records_read_total",
		Help: "Total number of JSONL records read",
	})

	RecordsWritten = factory.NewCounter(prometheus.CounterOpts{
		Name: "expkit_jsonl_records_written_total",
		Help: "Total number of JSONL records written",
	})

	ResourceLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "expkit_resource_lookups_total",
		Help: "Resource cache lookups by result (hit, miss)",
	}, []string{"resource", "result"})

	ResourceDownloads = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "expkit_resource_downloads_total",
		Help: "Completed resource downloads",
	}, []string{"resource"})

	ResourceDownloadBytes = factory.NewCounter(prometheus.CounterOpts{
		Name: "expkit_resource_download_bytes_total",
		Help: "Bytes fetched by resource downloads",
	})

	ResourceDownloadDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "expkit_resource_download_duration_seconds",
		Help:    "Wall time of resource downloads, lock wait included",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	OfflineRefusals = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "expkit_resource_offline_refusals_total",
		Help: "Downloads refused because offline mode is active",
	}, []string{"resource"})

	SeedsApplied = factory.NewCounter(prometheus.CounterOpts{
		Name: "expkit_seeds_applied_total",
		Help: "Number of times the process-wide generators were seeded",
	})

	LastSeed = factory.NewGauge(prometheus.GaugeOpts{
		Name: "expkit_last_seed",
		Help: "Seed most recently applied to the process-wide generators",
	})

	TensorsMoved = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "expkit_tensors_moved_total",
		Help: "Batch values moved to a device",
	}, []string{"device"})
)

// WriteTextfile writes the current value of every collector to path in the
// Prometheus text format, as consumed by the node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
