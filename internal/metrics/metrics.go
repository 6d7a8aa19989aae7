// Package metrics exposes the load pipeline's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store labels.
const (
	StoreRelational = "relational"
	StoreDocument   = "document"
)

var (
	RowsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streaming_etl_rows_loaded_total",
			Help: "Rows or documents committed per store and table",
		},
		[]string{"store", "table"},
	)

	TableLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streaming_etl_table_load_seconds",
			Help:    "Duration of one full-replace table load in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "table"},
	)

	LoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streaming_etl_load_errors_total",
			Help: "Table loads rolled back or failed",
		},
		[]string{"store", "table"},
	)

	// OrphanSessions is set from the last verification; ref is "user" or "content".
	OrphanSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "streaming_etl_orphan_sessions",
			Help: "Viewing sessions whose reference did not resolve at the last verification",
		},
		[]string{"ref"},
	)
)

// RecordTableLoad records one table outcome. rows is ignored on failure.
func RecordTableLoad(store, table string, rows int, d time.Duration, err error) {
	TableLoadDuration.WithLabelValues(store, table).Observe(d.Seconds())
	if err != nil {
		LoadErrors.WithLabelValues(store, table).Inc()
		return
	}
	RowsLoaded.WithLabelValues(store, table).Add(float64(rows))
}

// RecordOrphans publishes the orphan counts of a verification.
func RecordOrphans(users, content int64) {
	OrphanSessions.WithLabelValues("user").Set(float64(users))
	OrphanSessions.WithLabelValues("content").Set(float64(content))
}
