package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	availabilityQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "staffbook",
			Name:      "availability_queries_total",
			Help:      "Count of bookable-slot queries by cache outcome.",
		},
		[]string{"cache"},
	)

	conflictsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "staffbook",
			Name:      "conflicts_detected_total",
			Help:      "Count of assignment checks that reported conflicts.",
		},
	)

	leaveRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "staffbook",
			Name:      "leave_requests_total",
			Help:      "Count of leave requests created by status.",
		},
		[]string{"status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(availabilityQueries, conflictsDetected, leaveRequests)
	})
}

func IncAvailabilityQuery(cacheOutcome string) {
	availabilityQueries.WithLabelValues(cacheOutcome).Inc()
}

func IncConflictsDetected() {
	conflictsDetected.Inc()
}

func IncLeaveRequest(status string) {
	leaveRequests.WithLabelValues(status).Inc()
}
