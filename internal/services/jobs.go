package services

import (
	"context"
	"log/slog"

	"github.com/arnold/civic-tasks-api/internal/config"
	"github.com/arnold/civic-tasks-api/internal/metrics"
	"github.com/arnold/civic-tasks-api/internal/scheduler"
)

const (
	JobExpirySweep       = "expiry-sweep"
	JobDailyMotivation   = "daily-motivation"
	JobNotificationPurge = "notification-cleanup"
)

// RegisterJobs wires the recurring background work onto s.
func RegisterJobs(s scheduler.Scheduler, cfg *config.Config, tasks *TaskService, notifier *NotificationService) error {
	jobs := []struct {
		name string
		spec string
		run  scheduler.Job
	}{
		{JobExpirySweep, cfg.SweepSchedule, func(ctx context.Context) {
			res := tasks.ReplaceExpiredTasksForAllUsers(ctx)
			for _, e := range res.Errors {
				slog.Warn("Expiry sweep item failed", slog.String("error", e))
			}
		}},
		{JobDailyMotivation, cfg.MotivationSchedule, func(ctx context.Context) {
			sum := notifier.SendDailyMotivation(ctx)
			slog.Info("Daily motivation sent",
				slog.Int("processed", sum.Processed),
				slog.Int("created", sum.Created),
				slog.Int("errors", len(sum.Errors)))
		}},
		{JobNotificationPurge, cfg.CleanupSchedule, func(ctx context.Context) {
			n, err := notifier.CleanupOldNotifications(ctx)
			if err != nil {
				slog.Error("Notification cleanup failed", slog.Any("error", err))
				return
			}
			slog.Info("Old notifications deleted", slog.Int64("count", n))
		}},
	}

	for _, j := range jobs {
		run := j.run
		name := j.name
		err := s.Register(name, j.spec, func(ctx context.Context) {
			metrics.JobRuns.WithLabelValues(name).Inc()
			run(ctx)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
