package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jitenkr2030/onetap-repost/internal/adapters"
	"github.com/jitenkr2030/onetap-repost/internal/models"
	"github.com/jitenkr2030/onetap-repost/internal/queue"
)

type jobFailure struct {
	id      string
	status  string
	message string
}

type fakeJobRepo struct {
	due       []*models.RepostJob
	dueErr    error
	claimOK   bool
	claimErr  error
	recurring []*models.RepostJob
	createErr error

	created        []*models.RepostJob
	completedIDs   []string
	failures       []jobFailure
	rescheduledIDs []string
	deleteStatuses []string
	deleteCutoff   time.Time
	deleted        int64
}

func (r *fakeJobRepo) Create(ctx context.Context, job *models.RepostJob) (string, error) {
	if r.createErr != nil {
		return "", r.createErr
	}
	r.created = append(r.created, job)
	return "job-new", nil
}

func (r *fakeJobRepo) GetByID(ctx context.Context, id string) (*models.RepostJob, error) {
	return nil, nil
}

func (r *fakeJobRepo) FindDue(ctx context.Context, statuses []string, now time.Time, limit int) ([]*models.RepostJob, error) {
	return r.due, r.dueErr
}

func (r *fakeJobRepo) ClaimForRun(ctx context.Context, id string, now time.Time) (bool, error) {
	return r.claimOK, r.claimErr
}

func (r *fakeJobRepo) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	r.completedIDs = append(r.completedIDs, id)
	return nil
}

func (r *fakeJobRepo) MarkFailure(ctx context.Context, id, status, errorMessage string) error {
	r.failures = append(r.failures, jobFailure{id: id, status: status, message: errorMessage})
	return nil
}

func (r *fakeJobRepo) FindRecurringCompleted(ctx context.Context) ([]*models.RepostJob, error) {
	return r.recurring, nil
}

func (r *fakeJobRepo) MarkRescheduled(ctx context.Context, id string) error {
	r.rescheduledIDs = append(r.rescheduledIDs, id)
	return nil
}

func (r *fakeJobRepo) Cancel(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func (r *fakeJobRepo) DeleteOlderThan(ctx context.Context, statuses []string, cutoff time.Time) (int64, error) {
	r.deleteStatuses = statuses
	r.deleteCutoff = cutoff
	return r.deleted, nil
}

func (r *fakeJobRepo) List(ctx context.Context, limit int) ([]*models.RepostJob, error) {
	return nil, nil
}

type fakePostRepo struct {
	created []*models.PlatformPost
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.PlatformPost) (string, error) {
	r.created = append(r.created, post)
	return "post-1", nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id string) (*models.PlatformPost, error) {
	return nil, nil
}

func (r *fakePostRepo) UpdateStats(ctx context.Context, id string, views, clicks, engagement int) error {
	return nil
}

func (r *fakePostRepo) List(ctx context.Context, limit int) ([]*models.PlatformPost, error) {
	return nil, nil
}

type fakeListingRepo struct {
	listings map[string]*models.Listing
}

func (r *fakeListingRepo) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	return r.listings[id], nil
}

type fakeAccountRepo struct {
	accounts map[string]*models.SocialAccount
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id string) (*models.SocialAccount, error) {
	return r.accounts[id], nil
}

func (r *fakeAccountRepo) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) SetTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	return nil
}

type fakeAdapter struct {
	postResult *adapters.PostResult
	postErr    error
	stats      *adapters.PostStats

	posted []*adapters.ListingContent
}

func (a *fakeAdapter) Name() string { return "Fake" }

func (a *fakeAdapter) Authenticate(ctx context.Context, authCode string) (*adapters.AuthResult, error) {
	return &adapters.AuthResult{Success: true}, nil
}

func (a *fakeAdapter) RefreshAccessToken(ctx context.Context) (*adapters.AuthResult, error) {
	return &adapters.AuthResult{Success: true}, nil
}

func (a *fakeAdapter) PostListing(ctx context.Context, listing *adapters.ListingContent) (*adapters.PostResult, error) {
	a.posted = append(a.posted, listing)
	return a.postResult, a.postErr
}

func (a *fakeAdapter) UpdatePost(ctx context.Context, postID string, updates *adapters.ListingContent) (*adapters.PostResult, error) {
	return &adapters.PostResult{Success: false, Error: "not supported"}, nil
}

func (a *fakeAdapter) DeletePost(ctx context.Context, postID string) (*adapters.PostResult, error) {
	return &adapters.PostResult{Success: false, Error: "not supported"}, nil
}

func (a *fakeAdapter) GetPostStats(ctx context.Context, postID string) *adapters.PostStats {
	return a.stats
}

type fakePlatformService struct {
	adapter adapters.Adapter
	err     error
}

func (s *fakePlatformService) AdapterFor(ctx context.Context, platform string, account *models.SocialAccount) (adapters.Adapter, error) {
	return s.adapter, s.err
}

func (s *fakePlatformService) ConfigFor(platform string) adapters.PlatformConfig {
	return adapters.PlatformConfig{}
}

func (s *fakePlatformService) CredentialsFor(account *models.SocialAccount) (adapters.Credentials, error) {
	return adapters.Credentials{}, nil
}

type fakeMediaResolver struct{}

func (f *fakeMediaResolver) ResolveURL(ctx context.Context, media *models.ListingMedia) (string, error) {
	if media.URL == "" {
		return "", errors.New("no source")
	}
	return media.URL, nil
}

type enqueuedStats struct {
	payload queue.StatsFetchPayload
	delay   time.Duration
}

type fakeStatsEnqueuer struct {
	enqueued []enqueuedStats
	err      error
}

func (f *fakeStatsEnqueuer) EnqueueStatsFetch(payload queue.StatsFetchPayload, delay time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, enqueuedStats{payload: payload, delay: delay})
	return nil
}

type workerFixture struct {
	worker   *RepostWorker
	jobs     *fakeJobRepo
	posts    *fakePostRepo
	listings *fakeListingRepo
	adapter  *fakeAdapter
	stats    *fakeStatsEnqueuer
	now      time.Time
}

func newWorkerFixture() *workerFixture {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	f := &workerFixture{
		jobs:    &fakeJobRepo{claimOK: true},
		posts:   &fakePostRepo{},
		adapter: &fakeAdapter{postResult: &adapters.PostResult{Success: true, PostID: "ext-42", PostURL: "https://t.me/c/chat/42"}},
		stats:   &fakeStatsEnqueuer{},
		now:     now,
	}
	f.listings = &fakeListingRepo{listings: map[string]*models.Listing{
		"listing-1": {
			ID:       "listing-1",
			Title:    "iPhone 13 Pro Excellent Condition",
			Category: adapters.CategoryMobilesElectronics,
			Price:    45000,
			Location: "Mumbai",
			Status:   models.ListingStatusActive,
			Media: []*models.ListingMedia{
				{ID: "m1", MediaType: models.MediaTypeImage, URL: "https://cdn.example.com/a.jpg"},
				{ID: "m2", MediaType: models.MediaTypeVideo, URL: "https://cdn.example.com/a.mp4"},
				{ID: "m3", MediaType: models.MediaTypeImage, URL: ""},
			},
		},
	}}

	f.worker = NewRepostWorker(f.jobs, f.posts, f.listings,
		&fakeAccountRepo{accounts: map[string]*models.SocialAccount{}},
		&fakePlatformService{adapter: f.adapter}, &fakeMediaResolver{}, f.stats)
	f.worker.now = func() time.Time { return now }
	return f
}

func pendingJob() *models.RepostJob {
	return &models.RepostJob{
		ID:          "job-1",
		ListingID:   "listing-1",
		PlatformID:  "telegram",
		Status:      models.JobStatusPending,
		MaxAttempts: models.DefaultMaxAttempts,
	}
}

func TestProcessJobSuccess(t *testing.T) {
	f := newWorkerFixture()

	err := f.worker.ProcessJob(context.Background(), pendingJob())
	require.NoError(t, err)

	require.Len(t, f.posts.created, 1)
	post := f.posts.created[0]
	assert.Equal(t, "listing-1", post.ListingID)
	assert.Equal(t, "telegram", post.PlatformID)
	assert.Equal(t, "job-1", post.JobID)
	assert.Equal(t, "ext-42", post.ExternalID)
	assert.Equal(t, models.PostStatusPosted, post.Status)
	assert.Equal(t, f.now, post.PostedAt)

	assert.Equal(t, []string{"job-1"}, f.jobs.completedIDs)
	assert.Empty(t, f.jobs.failures)

	require.Len(t, f.stats.enqueued, 1)
	assert.Equal(t, "post-1", f.stats.enqueued[0].payload.PostID)
	assert.Equal(t, "ext-42", f.stats.enqueued[0].payload.ExternalID)
	assert.Equal(t, "telegram", f.stats.enqueued[0].payload.Platform)
	assert.Equal(t, 5*time.Second, f.stats.enqueued[0].delay)
}

func TestProcessJobBuildsContentFromListing(t *testing.T) {
	f := newWorkerFixture()

	require.NoError(t, f.worker.ProcessJob(context.Background(), pendingJob()))

	require.Len(t, f.adapter.posted, 1)
	content := f.adapter.posted[0]
	assert.Equal(t, "iPhone 13 Pro Excellent Condition", content.Title)
	assert.Equal(t, adapters.CategoryMobilesElectronics, content.Category)
	// m3 has no resolvable source and is skipped, not fatal.
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, content.Images)
	assert.Equal(t, []string{"https://cdn.example.com/a.mp4"}, content.Videos)
	assert.Contains(t, content.Tags, "mobiles_electronics")
	assert.Contains(t, content.Tags, "iphone")
}

func TestProcessJobSkipsWhenNotClaimed(t *testing.T) {
	f := newWorkerFixture()
	f.jobs.claimOK = false

	require.NoError(t, f.worker.ProcessJob(context.Background(), pendingJob()))

	assert.Empty(t, f.adapter.posted)
	assert.Empty(t, f.posts.created)
	assert.Empty(t, f.jobs.completedIDs)
	assert.Empty(t, f.jobs.failures)
}

func TestProcessJobRefusalMovesToRetrying(t *testing.T) {
	f := newWorkerFixture()
	f.adapter.postResult = &adapters.PostResult{Success: false, Error: "rate limited"}

	require.NoError(t, f.worker.ProcessJob(context.Background(), pendingJob()))

	require.Len(t, f.jobs.failures, 1)
	assert.Equal(t, models.JobStatusRetrying, f.jobs.failures[0].status)
	assert.Equal(t, "rate limited", f.jobs.failures[0].message)
	assert.Empty(t, f.posts.created)
	assert.Empty(t, f.stats.enqueued)
}

func TestProcessJobFailsAtAttemptCap(t *testing.T) {
	f := newWorkerFixture()
	f.adapter.postErr = errors.New("connection reset")

	job := pendingJob()
	job.Status = models.JobStatusRetrying
	job.Attempts = 2

	require.NoError(t, f.worker.ProcessJob(context.Background(), job))

	require.Len(t, f.jobs.failures, 1)
	assert.Equal(t, models.JobStatusFailed, f.jobs.failures[0].status)
	assert.Equal(t, "connection reset", f.jobs.failures[0].message)
}

func TestProcessJobMissingListingFails(t *testing.T) {
	f := newWorkerFixture()

	job := pendingJob()
	job.ListingID = "listing-gone"

	require.NoError(t, f.worker.ProcessJob(context.Background(), job))

	require.Len(t, f.jobs.failures, 1)
	assert.Contains(t, f.jobs.failures[0].message, "listing-gone")
	assert.Empty(t, f.adapter.posted)
}

func TestProcessPendingJobsIsolatesFailures(t *testing.T) {
	f := newWorkerFixture()
	f.adapter.postErr = errors.New("boom")

	first := pendingJob()
	second := pendingJob()
	second.ID = "job-2"
	f.jobs.due = []*models.RepostJob{first, second}

	f.worker.ProcessPendingJobs()

	// The first failure never stops the second job from being attempted.
	require.Len(t, f.jobs.failures, 2)
	assert.Equal(t, "job-1", f.jobs.failures[0].id)
	assert.Equal(t, "job-2", f.jobs.failures[1].id)
}

func TestProcessPendingJobsAbortsOnRepoError(t *testing.T) {
	f := newWorkerFixture()
	f.jobs.dueErr = errors.New("connection refused")

	f.worker.ProcessPendingJobs()

	assert.Empty(t, f.adapter.posted)
	assert.Empty(t, f.jobs.failures)
}

func TestProcessJobLostStatsEnqueueIsNotFatal(t *testing.T) {
	f := newWorkerFixture()
	f.stats.err = errors.New("redis down")

	require.NoError(t, f.worker.ProcessJob(context.Background(), pendingJob()))

	assert.Equal(t, []string{"job-1"}, f.jobs.completedIDs)
	assert.Len(t, f.posts.created, 1)
}
