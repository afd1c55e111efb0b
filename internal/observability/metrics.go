package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperationLatency records per-store call latency.
	StoreOperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialmesh_store_operation_latency_seconds",
		Help:    "Backing store call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"store", "operation"})

	// StoreOperationErrors counts failed store calls.
	StoreOperationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialmesh_store_operation_errors_total",
		Help: "Total number of failed backing store calls",
	}, []string{"store", "operation"})

	// SagaOutcomes counts coordinator operations by final status.
	SagaOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialmesh_saga_outcomes_total",
		Help: "Coordinator operations by outcome status",
	}, []string{"operation", "status"})
)

// TrackStoreOperation returns a function that records latency and, when
// given a non-nil error, an error count. Use with defer.
func TrackStoreOperation(store, operation string) func(error) {
	start := time.Now()
	return func(err error) {
		StoreOperationLatency.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
		if err != nil {
			StoreOperationErrors.WithLabelValues(store, operation).Inc()
		}
	}
}
