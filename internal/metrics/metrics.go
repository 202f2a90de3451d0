package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	ResultSuccess  = "success"
	ResultConflict = "conflict"
	ResultRejected = "rejected"
	ResultFailure  = "failure"
)

var (
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_sessions_started_total",
		Help: "Number of tracking sessions opened.",
	})

	SessionsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_sessions_finalized_total",
		Help: "Number of session finalize attempts by result.",
	}, []string{"result"})

	FinalizeRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_finalize_retries_total",
		Help: "Number of finalize transactions retried after a serialization failure.",
	})

	ApproachesLogged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_approaches_logged_total",
		Help: "Number of approaches logged by outcome.",
	}, []string{"outcome"})

	MilestonesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_milestones_awarded_total",
		Help: "Number of milestones granted by type.",
	}, []string{"type"})
)
