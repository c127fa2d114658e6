package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsvp_searches_total",
			Help: "Count of guest searches by outcome",
		},
		[]string{"outcome"}, // found, not_found, invalid, failed
	)
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsvp_submissions_total",
			Help: "Count of attendance submissions by outcome",
		},
		[]string{"outcome"},
	)
	DirectoryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rsvp_directory_request_duration_seconds",
			Help:    "Time taken by guest directory calls",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"op"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rsvp_active_sessions",
			Help: "Current number of RSVP sessions held in memory",
		},
	)
	CountdownConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "countdown_connections",
			Help: "Current number of live countdown connections",
		},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsvp_notifications_total",
			Help: "Count of confirmation notifications sent to the couple",
		},
		[]string{"status"},
	)
)

// Init registers the collectors with the default registry.
func Init() {
	prometheus.MustRegister(
		Searches,
		Submissions,
		DirectoryDuration,
		ActiveSessions,
		CountdownConnections,
		Notifications,
	)
}
