package services

import "github.com/prometheus/client_golang/prometheus"

var (
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_decisions_total",
			Help: "Validation decisions by form type and outcome.",
		},
		[]string{"form_type", "outcome"},
	)

	blocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_blocks_total",
			Help: "Blocked submissions by category.",
		},
		[]string{"category"},
	)

	// infraFaults counts failures the pipeline tolerated (failed open).
	infraFaults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_infra_faults_total",
			Help: "Infrastructure faults tolerated by the pipeline, by component.",
		},
		[]string{"component"},
	)

	cleanupDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_cleanup_deleted_total",
			Help: "Rows and session records removed by cleanup, by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(decisionsTotal, blocksTotal, infraFaults, cleanupDeleted)
}

// recordCleanup adds cleanup results to the cleanup counter.
func recordCleanup(logsDeleted int64, sessionsCleaned int) {
	cleanupDeleted.WithLabelValues("logs").Add(float64(logsDeleted))
	cleanupDeleted.WithLabelValues("sessions").Add(float64(sessionsCleaned))
}
