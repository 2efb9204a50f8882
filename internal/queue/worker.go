package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/jitenkr2030/onetap-repost/internal/models"
)

// HandleStatsFetchTask fetches engagement metrics for a published post and
// stores them. Stats are best-effort telemetry: a failed fetch or an
// already-deleted post is logged and swallowed, never retried as an error.
func (q *StatsQueue) HandleStatsFetchTask(ctx context.Context, task *asynq.Task) error {
	var payload StatsFetchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	q.FetchStats(ctx, payload)
	return nil
}

func (q *StatsQueue) FetchStats(ctx context.Context, payload StatsFetchPayload) {
	var account *models.SocialAccount
	if payload.AccountID != "" {
		acc, err := q.accounts.GetByID(ctx, payload.AccountID)
		if err != nil {
			slog.Info("stats fetch: failed to load account", "account_id", payload.AccountID, "error", err)
			return
		}
		account = acc
	}

	adapter, err := q.platform.AdapterFor(ctx, payload.Platform, account)
	if err != nil {
		slog.Info("stats fetch: failed to resolve adapter", "platform", payload.Platform, "error", err)
		return
	}

	stats := adapter.GetPostStats(ctx, payload.ExternalID)
	if stats == nil {
		slog.Info("stats fetch: no stats available", "post_id", payload.PostID, "platform", payload.Platform)
		return
	}

	err = q.posts.UpdateStats(ctx, payload.PostID, stats.Views, stats.Clicks, stats.Engagement())
	if err != nil {
		slog.Info("stats fetch: failed to update post", "post_id", payload.PostID, "error", err)
	}
}
