package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jitenkr2030/onetap-repost/internal/models"
)

func TestCleanupOldJobsDeletesTerminalJobsPastRetention(t *testing.T) {
	f := newWorkerFixture()
	f.jobs.deleted = 4

	f.worker.CleanupOldJobs()

	assert.Equal(t, []string{
		models.JobStatusFailed,
		models.JobStatusCompleted,
		models.JobStatusCancelled,
	}, f.jobs.deleteStatuses)
	assert.Equal(t, f.now.AddDate(0, 0, -30), f.jobs.deleteCutoff)
}
