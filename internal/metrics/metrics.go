package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Board move attempts by outcome (refused, noop, confirmed, rolled_back).
	BoardMoves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decorops_board_moves_total",
			Help: "Stage board move attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Board loads by result (ok, degraded).
	BoardLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decorops_board_loads_total",
			Help: "Stage board loads by result",
		},
		[]string{"result"},
	)

	// Data service call latency in seconds.
	DataServiceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "decorops_dataservice_request_duration_seconds",
			Help:    "Remote data service request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request latency in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "decorops_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	// Cache lookups by catalogue and result (hit, miss).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "decorops_cache_lookups_total",
			Help: "Catalogue cache lookups by result",
		},
		[]string{"catalogue", "result"},
	)
)

// RecordBoardMove counts a move attempt.
func RecordBoardMove(outcome string) {
	BoardMoves.WithLabelValues(outcome).Inc()
}

// RecordBoardLoad counts a board load.
func RecordBoardLoad(result string) {
	BoardLoads.WithLabelValues(result).Inc()
}

// RecordDataServiceCall observes one remote call.
func RecordDataServiceCall(method, path, status string, duration time.Duration) {
	DataServiceDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordHTTPRequest observes one served request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(catalogue string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(catalogue, result).Inc()
}
