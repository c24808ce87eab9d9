// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FormSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_form_submissions_total",
			Help: "Total number of form submissions by outcome",
		},
		[]string{"form_type", "outcome"},
	)

	FormSubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "console_form_submission_duration_seconds",
			Help: "Duration of form submission round-trips in seconds",
		},
		[]string{"form_type"},
	)

	DraftSavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_draft_saves_total",
			Help: "Total number of draft writes per form type",
		},
		[]string{"form_type"},
	)

	DraftRestoresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_draft_restores_total",
			Help: "Total number of draft restore/discard decisions",
		},
		[]string{"form_type", "decision"},
	)

	OpenFormSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_open_form_sessions",
			Help: "Number of currently open form sessions",
		},
	)

	PlatformRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_platform_requests_total",
			Help: "Total number of platform API requests by entity and status",
		},
		[]string{"entity_type", "operation", "status"},
	)

	DeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_deletions_total",
			Help: "Total number of delete operations by stage",
		},
		[]string{"entity_type", "stage"},
	)
)
