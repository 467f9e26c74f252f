// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	RiskQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_queries_total",
			Help: "Risk queries by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	RecordsFetched = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "risk_records_fetched",
			Help:    "Number of records returned per fetch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"source"},
	)

	MalformedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "risk_records_malformed_total",
			Help: "Records skipped by statistics for lacking a numeric risk percentage",
		},
	)

	RecordCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_record_cache_lookups_total",
			Help: "Record cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	RiskAlertsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_alerts_sent_total",
			Help: "Risk alerts delivered by channel",
		},
		[]string{"channel"},
	)

	SurveillanceViews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "surveillance_views_total",
			Help: "Surveillance dashboard reads by view and outcome",
		},
		[]string{"view", "outcome"},
	)
)
