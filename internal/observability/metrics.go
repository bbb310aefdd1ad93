package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clima_submissions_accepted_total",
			Help: "Total number of survey responses stored",
		},
	)

	SubmissionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clima_submissions_rejected_total",
			Help: "Total number of survey submissions rejected",
		},
		[]string{"reason"},
	)

	SnapshotSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clima_snapshot_saves_total",
			Help: "Snapshot save attempts by result",
		},
		[]string{"result"},
	)

	StoredResponses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clima_stored_responses",
			Help: "Number of responses currently held in memory",
		},
	)

	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)
)
