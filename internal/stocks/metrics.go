package stocks

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sheetnews",
		Subsystem: "stocks",
		Name:      "lookups_total",
		Help:      "Stock operations by operation and outcome kind.",
	}, []string{"operation", "outcome"})

	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sheetnews",
		Subsystem: "stocks",
		Name:      "batch_size",
		Help:      "Number of names requested per batch lookup.",
		Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
	})
)

func recordLookup(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var e *Error
		if errors.As(err, &e) {
			outcome = e.Kind.String()
		}
	}
	lookupsTotal.WithLabelValues(operation, outcome).Inc()
}
