// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_jobs_submitted_total",
			Help: "Total number of diagnostic jobs submitted",
		},
	)

	JobsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_jobs_completed_total",
			Help: "Total number of diagnostic jobs completed",
		},
	)

	JobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_jobs_failed_total",
			Help: "Total number of diagnostic jobs failed, by stage",
		},
		[]string{"stage"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of each pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	JobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_jobs_active",
			Help: "Number of diagnostic jobs currently executing",
		},
	)

	DeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_delivery_failures_total",
			Help: "Total number of notification delivery failures, by channel",
		},
		[]string{"channel"},
	)

	RenderFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_render_fallbacks_total",
			Help: "Total number of renders served by the procedural fallback engine",
		},
	)
)
