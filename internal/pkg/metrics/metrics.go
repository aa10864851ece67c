// Package metrics holds the Prometheus collectors shared by handlers and
// services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	propertiesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "properties_created_total",
			Help: "Properties created, by property type",
		},
		[]string{"property_type"},
	)

	propertiesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "properties_deleted_total",
			Help: "Properties deleted",
		},
	)

	imageUploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_upload_bytes_total",
			Help: "Total bytes of staged image uploads",
		},
	)

	imagePromotionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_promotion_failures_total",
			Help: "Temp images that could not be moved to their property folder",
		},
	)

	importedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "import_rows_inserted_total",
			Help: "Properties inserted by spreadsheet import",
		},
	)
)

func RecordPropertyCreated(propertyType string) {
	propertiesCreated.WithLabelValues(propertyType).Inc()
}

func RecordPropertyDeleted() {
	propertiesDeleted.Inc()
}

// RecordUpload records staged upload bytes.
func RecordUpload(bytes int64) {
	imageUploadBytes.Add(float64(bytes))
}

func RecordPromotionFailure() {
	imagePromotionFailures.Inc()
}

func RecordImported(n int) {
	importedRows.Add(float64(n))
}
