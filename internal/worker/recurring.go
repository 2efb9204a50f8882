package worker

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/jitenkr2030/onetap-repost/internal/models"
)

// ProcessRecurringJobs regenerates successors for completed recurring jobs.
// The original job is never mutated beyond its rescheduled flag, which keeps
// a doubled-up pass from cloning the same job twice.
func (w *RepostWorker) ProcessRecurringJobs() {
	ctx := context.Background()

	jobs, err := w.jobs.FindRecurringCompleted(ctx)
	if err != nil {
		slog.Error("recurring pass aborted", "error", err)
		return
	}

	log.Printf("Found %d recurring jobs to reschedule", len(jobs))

	for _, job := range jobs {
		frequency := ""
		if job.Config.RecurringConfig != nil {
			frequency = job.Config.RecurringConfig.Frequency
		}

		lastRun := w.now()
		if job.CompletedAt != nil {
			lastRun = *job.CompletedAt
		}

		successor := &models.RepostJob{
			ListingID:   job.ListingID,
			PlatformID:  job.PlatformID,
			AccountID:   job.AccountID,
			Status:      models.JobStatusPending,
			ScheduledAt: NextSchedule(lastRun, frequency),
			MaxAttempts: job.MaxAttempts,
			Config:      job.Config,
		}

		id, err := w.jobs.Create(ctx, successor)
		if err != nil {
			slog.Error("failed to create recurring job", "source_job_id", job.ID, "error", err)
			continue
		}

		if err := w.jobs.MarkRescheduled(ctx, job.ID); err != nil {
			slog.Error("failed to flag job as rescheduled", "job_id", job.ID, "error", err)
			continue
		}

		log.Printf("Created recurring job %s for listing %s, scheduled for %s", id, job.ListingID, successor.ScheduledAt)
	}
}

// NextSchedule advances lastRun by the recurring frequency. Months move by
// calendar month, not a fixed day count. Unrecognized frequencies default to
// daily.
func NextSchedule(lastRun time.Time, frequency string) time.Time {
	switch frequency {
	case "hourly":
		return lastRun.Add(time.Hour)
	case "daily":
		return lastRun.AddDate(0, 0, 1)
	case "weekly":
		return lastRun.AddDate(0, 0, 7)
	case "monthly":
		return lastRun.AddDate(0, 1, 0)
	default:
		return lastRun.AddDate(0, 0, 1)
	}
}
