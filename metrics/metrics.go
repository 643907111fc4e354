package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ReceiptRequestsTotal counts receipt analysis requests by outcome.
	ReceiptRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "price_tracker",
		Subsystem: "receipt",
		Name:      "requests_total",
		Help:      "Total number of receipt analysis requests, labeled by result.",
	}, []string{"result"})

	// ReceiptStageDurationSeconds is the time spent in each pipeline stage.
	ReceiptStageDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "price_tracker",
		Subsystem: "receipt",
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each receipt pipeline stage (decode, blob, ocr, extract).",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60},
	}, []string{"stage"})

	// ProductOperationsTotal counts product operations by kind and outcome.
	ProductOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "price_tracker",
		Subsystem: "products",
		Name:      "operations_total",
		Help:      "Total number of product operations, labeled by operation and result.",
	}, []string{"op", "result"})
)

// Register registers service metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ReceiptRequestsTotal,
			ReceiptStageDurationSeconds,
			ProductOperationsTotal,
		)
	})
}

// ObserveStage records how long a pipeline stage took.
func ObserveStage(stage string, seconds float64) {
	ReceiptStageDurationSeconds.WithLabelValues(stage).Observe(seconds)
}

// Result maps an error to a metric label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
