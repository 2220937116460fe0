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

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	CriteriaFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "criteria_fallback_total",
			Help: "Criteria resolutions served by the keyword fallback instead of the language service",
		},
		[]string{"reason"},
	)

	ComboCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "combo_cache_hits_total",
			Help: "Combo suggestion cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)
