package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	saleOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockroom_sales_operations_total",
			Help: "Total number of sale operations by outcome",
		},
		[]string{"operation", "result"},
	)

	saleOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockroom_sales_operation_duration_seconds",
			Help:    "Sale operation latency in seconds, lock waits included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	unitStateChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockroom_unit_state_changes_total",
			Help: "Total number of unit state transitions",
		},
		[]string{"from", "to"},
	)
)

func init() {
	prometheus.MustRegister(saleOperations, saleOperationDuration, unitStateChanges)
}

// ObserveSaleOperation records the outcome and latency of one sale operation
func ObserveSaleOperation(operation string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	saleOperations.WithLabelValues(operation, result).Inc()
	saleOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// UnitStateChanged counts n units moving from one state to another
func UnitStateChanged(from, to string, n int) {
	if n <= 0 || from == to {
		return
	}
	unitStateChanges.WithLabelValues(from, to).Add(float64(n))
}
