// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics
	messagesStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_stored_total",
			Help: "Total number of store writes by result",
		},
		[]string{"result"},
	)

	storeUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_store_up",
			Help: "Whether the last store health probe succeeded (1) or failed (0)",
		},
	)

	// Detection metrics
	detectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_detections_total",
			Help: "Total number of language detections",
		},
		[]string{"detector", "language"},
	)

	overridesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_detection_overrides_total",
			Help: "Total number of detection results corrected by the override table",
		},
		[]string{"rule"},
	)

	// Translation metrics
	translationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_translations_total",
			Help: "Total number of translation requests",
		},
		[]string{"provider", "status"},
	)

	translationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_translation_duration_seconds",
			Help:    "Duration of translation requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"provider", "status"},
	)
)

// Result labels.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

func RecordStore(success bool) {
	messagesStoredTotal.WithLabelValues(resultLabel(success)).Inc()
}

func SetStoreUp(up bool) {
	if up {
		storeUp.Set(1)
		return
	}
	storeUp.Set(0)
}

func RecordDetection(detector, language string) {
	detectionsTotal.WithLabelValues(detector, language).Inc()
}

func RecordOverride(rule string) {
	overridesTotal.WithLabelValues(rule).Inc()
}

// RecordTranslation records one provider call. Skipped translations carry a zero duration
// and are only counted.
func RecordTranslation(provider, status string, duration time.Duration) {
	translationsTotal.WithLabelValues(provider, status).Inc()
	if status == ResultSkipped {
		return
	}
	translationDuration.WithLabelValues(provider, status).Observe(duration.Seconds())
}

func resultLabel(success bool) string {
	if success {
		return ResultOK
	}
	return ResultError
}
