// Package observability holds the Prometheus collectors shared by the app.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "workouts",
		Name:      "logged_total",
		Help:      "Workouts committed through the form, by type.",
	}, []string{"type"})
	submissionsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "form",
		Name:      "rejected_total",
		Help:      "Form submissions rejected by validation.",
	})
	persistenceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "persistence",
		Name:      "failures_total",
		Help:      "Failed blob loads and saves, by operation.",
	}, []string{"op"})
	geolocationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mapty",
		Subsystem: "geolocation",
		Name:      "failures_total",
		Help:      "Startup geolocation requests that failed or timed out.",
	})
)

func init() {
	prometheus.MustRegister(workoutsLogged, submissionsRejected, persistenceFailures, geolocationFailures)
}

// RecordWorkoutLogged counts a committed workout.
func RecordWorkoutLogged(kind string) {
	workoutsLogged.WithLabelValues(kind).Inc()
}

// RecordSubmissionRejected counts a rejected form submission.
func RecordSubmissionRejected() {
	submissionsRejected.Inc()
}

// RecordPersistenceFailure counts a failed "load" or "save".
func RecordPersistenceFailure(op string) {
	persistenceFailures.WithLabelValues(op).Inc()
}

// RecordGeolocationFailure counts a failed position request.
func RecordGeolocationFailure() {
	geolocationFailures.Inc()
}
