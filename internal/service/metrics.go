package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activitiesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "activities_created_total",
		Help: "Activities stored as draft",
	})

	activitiesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "activities_submitted_total",
		Help: "Activities moved from draft to submitted",
	})

	overlapRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "activity_overlap_rejections_total",
		Help: "Create or update requests rejected by the schedule-overlap check",
	})

	reportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_generated_total",
		Help: "Supervisor reports rendered, by format",
	}, []string{"format"})
)
