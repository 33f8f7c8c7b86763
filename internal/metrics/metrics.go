package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunDuration tracks the latency of sweep and targeted runs
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "shiftsweep_run_duration_seconds",
			Help: "Duration of expiry runs in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
				10.0,  // 10s
			},
		},
		[]string{"mode", "status"}, // mode: bulk or targeted; status: success or failure
	)

	// Records counts classified records by outcome across all runs
	Records = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shiftsweep_records_total",
			Help: "Records processed by classification outcome",
		},
		[]string{"outcome"}, // scanned, set_expired, skipped_unknown, unparsable
	)
)

// RecordRunDuration records the duration of one run
func RecordRunDuration(mode, status string, duration float64) {
	RunDuration.WithLabelValues(mode, status).Observe(duration)
}

// RecordOutcomes adds per-run classification counts
func RecordOutcomes(scanned, setExpired, skippedUnknown, unparsable int) {
	Records.WithLabelValues("scanned").Add(float64(scanned))
	Records.WithLabelValues("set_expired").Add(float64(setExpired))
	Records.WithLabelValues("skipped_unknown").Add(float64(skippedUnknown))
	Records.WithLabelValues("unparsable").Add(float64(unparsable))
}
