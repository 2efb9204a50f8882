package worker

import (
	"context"
	"log"
	"log/slog"

	"github.com/jitenkr2030/onetap-repost/internal/models"
)

// CleanupOldJobs deletes terminal jobs whose completion is older than the
// retention window. Platform posts are kept; they are the durable record of
// what was published.
func (w *RepostWorker) CleanupOldJobs() {
	ctx := context.Background()
	cutoff := w.now().AddDate(0, 0, -retentionWindow)

	deleted, err := w.jobs.DeleteOlderThan(ctx, []string{
		models.JobStatusFailed,
		models.JobStatusCompleted,
		models.JobStatusCancelled,
	}, cutoff)
	if err != nil {
		slog.Error("cleanup pass aborted", "error", err)
		return
	}

	log.Printf("Deleted %d old jobs", deleted)
}
