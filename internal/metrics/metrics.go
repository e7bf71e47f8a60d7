package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "civic_submissions_total", Help: "Verification attempts by outcome"},
		[]string{"status"},
	)
	PointsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "civic_points_awarded_total", Help: "Points granted by approved submissions"},
	)
	BadgesAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "civic_badges_awarded_total", Help: "Badges newly awarded"},
	)
	SweepExpired = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "civic_sweep_expired_total", Help: "Assignments expired by the sweep"},
	)
	SweepReplaced = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "civic_sweep_replaced_total", Help: "Replacement assignments created by the sweep"},
	)
	SweepErrors = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "civic_sweep_errors_total", Help: "Per-item failures during the sweep"},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "civic_notifications_total", Help: "Notification gate decisions"},
		[]string{"type", "result"},
	)
	DeliveryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "civic_delivery_failures_total", Help: "Failed email/push deliveries"},
		[]string{"channel"},
	)
	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "civic_job_runs_total", Help: "Scheduled job executions"},
		[]string{"job"},
	)
)

func Register() {
	prometheus.MustRegister(
		Submissions,
		PointsAwarded,
		BadgesAwarded,
		SweepExpired,
		SweepReplaced,
		SweepErrors,
		Notifications,
		DeliveryFailures,
		JobRuns,
	)
}
