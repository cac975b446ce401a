// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeOK labels queries that returned a result.
const OutcomeOK = "ok"

var (
	// QueriesTotal counts queries by outcome: "ok" or the rejection kind.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_queries_total",
			Help: "Total number of queries by outcome",
		},
		[]string{"outcome"},
	)
	// QueryDuration is the latency of validation plus evaluation.
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_query_duration_seconds",
			Help:    "Query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	// QueryResultRows is the size of successful results.
	QueryResultRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_query_result_rows",
			Help:    "Number of rows returned per query",
			Buckets: []float64{0, 1, 10, 100, 500, 1000, 2500, 5000},
		},
	)
	// DatasetOperationsTotal counts dataset adds and removes.
	DatasetOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_dataset_operations_total",
			Help: "Total number of dataset operations",
		},
		[]string{"operation", "status"},
	)
	// Datasets is the number of datasets in the catalog.
	Datasets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "insight_datasets",
			Help: "Number of datasets currently loaded",
		},
	)
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// ObserveQuery records one query. rows is ignored unless outcome is OutcomeOK.
func ObserveQuery(outcome string, elapsed time.Duration, rows int) {
	QueriesTotal.WithLabelValues(outcome).Inc()
	QueryDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeOK {
		QueryResultRows.Observe(float64(rows))
	}
}

// ObserveDatasetOp records an add or remove and the resulting catalog size.
func ObserveDatasetOp(operation string, err error, count int) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DatasetOperationsTotal.WithLabelValues(operation, status).Inc()
	Datasets.Set(float64(count))
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
