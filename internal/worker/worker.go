package worker

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/jitenkr2030/onetap-repost/internal/adapters"
	"github.com/jitenkr2030/onetap-repost/internal/models"
	"github.com/jitenkr2030/onetap-repost/internal/queue"
	"github.com/jitenkr2030/onetap-repost/internal/repository"
	"github.com/jitenkr2030/onetap-repost/internal/service"
)

const (
	dispatchBatchSize = 10
	adapterTimeout    = 60 * time.Second
	statsFetchDelay   = 5 * time.Second
	retentionWindow   = 30 // days
)

// StatsEnqueuer schedules the delayed post-stats fetch.
type StatsEnqueuer interface {
	EnqueueStatsFetch(payload queue.StatsFetchPayload, delay time.Duration) error
}

// MediaResolver turns a stored media record into a fetchable URL.
type MediaResolver interface {
	ResolveURL(ctx context.Context, media *models.ListingMedia) (string, error)
}

// RepostWorker runs the three scheduler passes: dispatching due jobs,
// regenerating recurring jobs, and pruning old terminal jobs.
type RepostWorker struct {
	jobs     repository.RepostJobRepository
	posts    repository.PlatformPostRepository
	listings repository.ListingRepository
	accounts repository.SocialAccountRepository
	platform service.PlatformService
	media    MediaResolver
	stats    StatsEnqueuer

	now func() time.Time
}

func NewRepostWorker(
	jobs repository.RepostJobRepository,
	posts repository.PlatformPostRepository,
	listings repository.ListingRepository,
	accounts repository.SocialAccountRepository,
	platform service.PlatformService,
	media MediaResolver,
	stats StatsEnqueuer) *RepostWorker {
	return &RepostWorker{
		jobs:     jobs,
		posts:    posts,
		listings: listings,
		accounts: accounts,
		platform: platform,
		media:    media,
		stats:    stats,
		now:      time.Now,
	}
}

// ProcessPendingJobs is the dispatch pass. Jobs are processed sequentially to
// bound outbound request concurrency; a failure in one job never aborts the
// rest of the batch.
func (w *RepostWorker) ProcessPendingJobs() {
	ctx := context.Background()

	jobs, err := w.jobs.FindDue(ctx,
		[]string{models.JobStatusPending, models.JobStatusRetrying},
		w.now(), dispatchBatchSize)
	if err != nil {
		slog.Error("dispatch pass aborted", "error", err)
		return
	}

	log.Printf("Found %d pending jobs", len(jobs))

	for _, job := range jobs {
		if err := w.ProcessJob(ctx, job); err != nil {
			slog.Error("job processing failed", "job_id", job.ID, "error", err)
		}
	}
}

// ProcessJob runs a single claimed job through its platform adapter and
// records the outcome.
func (w *RepostWorker) ProcessJob(ctx context.Context, job *models.RepostJob) error {
	claimed, err := w.jobs.ClaimForRun(ctx, job.ID, w.now())
	if err != nil {
		return err
	}
	if !claimed {
		// Another tick got here first.
		return nil
	}
	job.Attempts++

	listing, err := w.listings.GetByID(ctx, job.ListingID)
	if err != nil {
		return w.failJob(ctx, job, err.Error())
	}
	if listing == nil {
		return w.failJob(ctx, job, fmt.Sprintf("listing %s not found", job.ListingID))
	}

	var account *models.SocialAccount
	if job.AccountID != "" {
		account, err = w.accounts.GetByID(ctx, job.AccountID)
		if err != nil {
			return w.failJob(ctx, job, err.Error())
		}
	}

	adapter, err := w.platform.AdapterFor(ctx, job.PlatformID, account)
	if err != nil {
		return w.failJob(ctx, job, err.Error())
	}

	content := w.buildContent(ctx, listing)

	callCtx, cancel := context.WithTimeout(ctx, adapterTimeout)
	defer cancel()

	result, err := adapter.PostListing(callCtx, content)
	if err != nil {
		return w.failJob(ctx, job, err.Error())
	}
	if result == nil || !result.Success {
		msg := "platform posting failed"
		if result != nil && result.Error != "" {
			msg = result.Error
		}
		return w.failJob(ctx, job, msg)
	}

	now := w.now()
	post := &models.PlatformPost{
		ListingID:  job.ListingID,
		PlatformID: job.PlatformID,
		AccountID:  job.AccountID,
		JobID:      job.ID,
		ExternalID: result.PostID,
		URL:        result.PostURL,
		Status:     models.PostStatusPosted,
		PostedAt:   now,
	}
	postID, err := w.posts.Create(ctx, post)
	if err != nil {
		return w.failJob(ctx, job, "failed to record post: "+err.Error())
	}

	if err := w.jobs.MarkCompleted(ctx, job.ID, now); err != nil {
		return err
	}

	// Fire-and-forget: stats are telemetry, a lost fetch is not a job failure.
	err = w.stats.EnqueueStatsFetch(queue.StatsFetchPayload{
		PostID:     postID,
		ExternalID: result.PostID,
		Platform:   job.PlatformID,
		AccountID:  job.AccountID,
	}, statsFetchDelay)
	if err != nil {
		slog.Info("failed to schedule stats fetch", "post_id", postID, "error", err)
	}

	log.Printf("Job %s completed successfully. Post ID: %s", job.ID, postID)
	return nil
}

// failJob records the failure and moves the job to RETRYING or, once the
// attempt cap is reached, FAILED.
func (w *RepostWorker) failJob(ctx context.Context, job *models.RepostJob, message string) error {
	status := models.JobStatusFailed
	if job.Attempts < job.MaxAttempts {
		status = models.JobStatusRetrying
	}

	slog.Info("job attempt failed", "job_id", job.ID, "attempt", job.Attempts, "status", status, "error", message)

	return w.jobs.MarkFailure(ctx, job.ID, status, message)
}

func (w *RepostWorker) buildContent(ctx context.Context, listing *models.Listing) *adapters.ListingContent {
	content := &adapters.ListingContent{
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		Location:    listing.Location,
		Category:    listing.Category,
		Tags:        GenerateTags(listing.Category, listing.Title),
	}

	for _, m := range listing.Media {
		url, err := w.media.ResolveURL(ctx, m)
		if err != nil {
			slog.Info("skipping unresolvable media", "media_id", m.ID, "error", err)
			continue
		}
		switch m.MediaType {
		case models.MediaTypeVideo:
			content.Videos = append(content.Videos, url)
		default:
			content.Images = append(content.Images, url)
		}
	}

	return content
}
