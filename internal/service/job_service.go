package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jitenkr2030/onetap-repost/internal/adapters"
	"github.com/jitenkr2030/onetap-repost/internal/models"
	"github.com/jitenkr2030/onetap-repost/internal/repository"
	"github.com/jitenkr2030/onetap-repost/internal/transfer"
)

// JobService is the API-facing surface over the job store. The scheduler loop
// itself never goes through here.
type JobService interface {
	Schedule(ctx context.Context, req *transfer.JobCreation) (*models.RepostJob, error)
	List(ctx context.Context, limit int) ([]*models.RepostJob, error)
	Cancel(ctx context.Context, id string) (bool, error)
	ListPosts(ctx context.Context, limit int) ([]*models.PlatformPost, error)
}

type jobService struct {
	jobs     repository.RepostJobRepository
	posts    repository.PlatformPostRepository
	listings repository.ListingRepository
}

func NewJobService(
	jobs repository.RepostJobRepository,
	posts repository.PlatformPostRepository,
	listings repository.ListingRepository) JobService {
	return &jobService{
		jobs:     jobs,
		posts:    posts,
		listings: listings,
	}
}

func (s *jobService) Schedule(ctx context.Context, req *transfer.JobCreation) (*models.RepostJob, error) {
	if req.ListingID == "" {
		return nil, errors.New("listing_id is required")
	}
	if !adapters.IsPlatformSupported(req.Platform) {
		return nil, fmt.Errorf("unsupported platform: %s", req.Platform)
	}

	listing, err := s.listings.GetByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fmt.Errorf("listing %s not found", req.ListingID)
	}

	scheduledAt := time.Now()
	config := models.JobConfig{ScheduleType: req.ScheduleType}

	switch req.ScheduleType {
	case "now", "":
		config.ScheduleType = "now"
	case "later":
		scheduledAt, err = time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled_at: %w", err)
		}
	case "recurring":
		config.Recurring = true
		config.RecurringConfig = &models.RecurringConfig{Frequency: req.Frequency}
		if req.ScheduledAt != "" {
			scheduledAt, err = time.Parse(time.RFC3339, req.ScheduledAt)
			if err != nil {
				return nil, fmt.Errorf("invalid scheduled_at: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("unknown schedule_type: %s", req.ScheduleType)
	}

	job := &models.RepostJob{
		ListingID:   req.ListingID,
		PlatformID:  req.Platform,
		AccountID:   req.AccountID,
		Status:      models.JobStatusPending,
		ScheduledAt: scheduledAt,
		Config:      config,
	}

	id, err := s.jobs.Create(ctx, job)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	job.ID = id

	return job, nil
}

func (s *jobService) List(ctx context.Context, limit int) ([]*models.RepostJob, error) {
	return s.jobs.List(ctx, limit)
}

func (s *jobService) Cancel(ctx context.Context, id string) (bool, error) {
	return s.jobs.Cancel(ctx, id)
}

func (s *jobService) ListPosts(ctx context.Context, limit int) ([]*models.PlatformPost, error) {
	return s.posts.List(ctx, limit)
}
