package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jitenkr2030/onetap-repost/internal/adapters"
	"github.com/jitenkr2030/onetap-repost/internal/models"
)

type statsUpdate struct {
	id         string
	views      int
	clicks     int
	engagement int
}

type fakePostRepo struct {
	updates   []statsUpdate
	updateErr error
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.PlatformPost) (string, error) {
	return "", nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id string) (*models.PlatformPost, error) {
	return nil, nil
}

func (r *fakePostRepo) UpdateStats(ctx context.Context, id string, views, clicks, engagement int) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates = append(r.updates, statsUpdate{id: id, views: views, clicks: clicks, engagement: engagement})
	return nil
}

func (r *fakePostRepo) List(ctx context.Context, limit int) ([]*models.PlatformPost, error) {
	return nil, nil
}

type fakeAccountRepo struct {
	accounts map[string]*models.SocialAccount
	err      error
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id string) (*models.SocialAccount, error) {
	return r.accounts[id], r.err
}

func (r *fakeAccountRepo) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) SetTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	return nil
}

type fakeStatsAdapter struct {
	stats *adapters.PostStats
}

func (a *fakeStatsAdapter) Name() string { return "Fake" }

func (a *fakeStatsAdapter) Authenticate(ctx context.Context, authCode string) (*adapters.AuthResult, error) {
	return &adapters.AuthResult{Success: true}, nil
}

func (a *fakeStatsAdapter) RefreshAccessToken(ctx context.Context) (*adapters.AuthResult, error) {
	return &adapters.AuthResult{Success: true}, nil
}

func (a *fakeStatsAdapter) PostListing(ctx context.Context, listing *adapters.ListingContent) (*adapters.PostResult, error) {
	return &adapters.PostResult{Success: true}, nil
}

func (a *fakeStatsAdapter) UpdatePost(ctx context.Context, postID string, updates *adapters.ListingContent) (*adapters.PostResult, error) {
	return &adapters.PostResult{Success: false}, nil
}

func (a *fakeStatsAdapter) DeletePost(ctx context.Context, postID string) (*adapters.PostResult, error) {
	return &adapters.PostResult{Success: false}, nil
}

func (a *fakeStatsAdapter) GetPostStats(ctx context.Context, postID string) *adapters.PostStats {
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

func newStatsQueueFixture(stats *adapters.PostStats) (*StatsQueue, *fakePostRepo) {
	posts := &fakePostRepo{}
	q := NewStatsQueue(posts,
		&fakeAccountRepo{accounts: map[string]*models.SocialAccount{}},
		&fakePlatformService{adapter: &fakeStatsAdapter{stats: stats}})
	return q, posts
}

func TestFetchStatsUpdatesPost(t *testing.T) {
	q, posts := newStatsQueueFixture(&adapters.PostStats{
		Views: 120, Clicks: 15, Likes: 7, Comments: 2, Shares: 1,
	})

	q.FetchStats(context.Background(), StatsFetchPayload{
		PostID:     "post-1",
		ExternalID: "ext-42",
		Platform:   "facebook",
	})

	require.Len(t, posts.updates, 1)
	assert.Equal(t, statsUpdate{id: "post-1", views: 120, clicks: 15, engagement: 10}, posts.updates[0])
}

func TestFetchStatsNilStatsSwallowed(t *testing.T) {
	q, posts := newStatsQueueFixture(nil)

	q.FetchStats(context.Background(), StatsFetchPayload{
		PostID:   "post-1",
		Platform: "whatsapp",
	})

	assert.Empty(t, posts.updates)
}

func TestFetchStatsAdapterResolutionFailureSwallowed(t *testing.T) {
	posts := &fakePostRepo{}
	q := NewStatsQueue(posts,
		&fakeAccountRepo{accounts: map[string]*models.SocialAccount{}},
		&fakePlatformService{err: errors.New("unsupported platform: myspace")})

	q.FetchStats(context.Background(), StatsFetchPayload{PostID: "post-1", Platform: "myspace"})

	assert.Empty(t, posts.updates)
}

func TestFetchStatsAccountLoadFailureSwallowed(t *testing.T) {
	posts := &fakePostRepo{}
	q := NewStatsQueue(posts,
		&fakeAccountRepo{err: errors.New("connection refused")},
		&fakePlatformService{adapter: &fakeStatsAdapter{stats: &adapters.PostStats{Views: 1}}})

	q.FetchStats(context.Background(), StatsFetchPayload{
		PostID:    "post-1",
		Platform:  "facebook",
		AccountID: "acc-1",
	})

	assert.Empty(t, posts.updates)
}

func TestHandleStatsFetchTask(t *testing.T) {
	q, posts := newStatsQueueFixture(&adapters.PostStats{Views: 5})

	payload, err := json.Marshal(StatsFetchPayload{PostID: "post-1", ExternalID: "ext-1", Platform: "telegram"})
	require.NoError(t, err)

	err = q.HandleStatsFetchTask(context.Background(), asynq.NewTask(TaskTypeFetchStats, payload))

	require.NoError(t, err)
	require.Len(t, posts.updates, 1)
	assert.Equal(t, 5, posts.updates[0].views)
}

func TestHandleStatsFetchTaskBadPayload(t *testing.T) {
	q, posts := newStatsQueueFixture(&adapters.PostStats{})

	err := q.HandleStatsFetchTask(context.Background(), asynq.NewTask(TaskTypeFetchStats, []byte("{not json")))

	assert.Error(t, err)
	assert.Empty(t, posts.updates)
}
