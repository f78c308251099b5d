// Package metrics exposes Prometheus counters for the optimization pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImagesProcessed counts source images run through the full pipeline
	ImagesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_images_processed_total",
		Help: "Number of source images processed by the pipeline.",
	})

	// VariantFailures counts per-profile failures by pipeline stage
	VariantFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_variant_failures_total",
		Help: "Number of per-profile failures, by profile and stage.",
	}, []string{"profile", "stage"})

	// BytesIn counts source bytes fetched for processing
	BytesIn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_source_bytes_total",
		Help: "Total source image bytes fetched for processing.",
	})

	// BytesOut counts encoded variant bytes by profile
	BytesOut = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_variant_bytes_total",
		Help: "Total encoded variant bytes produced, by profile.",
	}, []string{"profile"})
)
