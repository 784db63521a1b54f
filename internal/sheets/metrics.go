package sheets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sheet-news/backend/internal/util"
)

var (
	backendCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sheetnews",
		Subsystem: "sheets",
		Name:      "backend_calls_total",
		Help:      "Google Sheets API calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	backendLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sheetnews",
		Subsystem: "sheets",
		Name:      "backend_latency_seconds",
		Help:      "Google Sheets API call latency by operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	titleCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sheetnews",
		Subsystem: "sheets",
		Name:      "title_cache_lookups_total",
		Help:      "Sheet title cache lookups by result (hit, miss, fallback).",
	}, []string{"result"})
)

func observeCall(operation string, timer util.Timer, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	backendCallsTotal.WithLabelValues(operation, outcome).Inc()
	backendLatencySeconds.WithLabelValues(operation).Observe(timer.ElapsedSeconds())
}
