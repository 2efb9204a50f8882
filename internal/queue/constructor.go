package queue

import (
	"github.com/jitenkr2030/onetap-repost/internal/repository"
	"github.com/jitenkr2030/onetap-repost/internal/service"
)

// StatsQueue consumes the delayed stats-fetch tasks produced after a
// successful publish.
type StatsQueue struct {
	posts    repository.PlatformPostRepository
	accounts repository.SocialAccountRepository
	platform service.PlatformService
}

func NewStatsQueue(
	posts repository.PlatformPostRepository,
	accounts repository.SocialAccountRepository,
	platform service.PlatformService) *StatsQueue {
	return &StatsQueue{
		posts:    posts,
		accounts: accounts,
		platform: platform,
	}
}

const TaskTypeFetchStats = "stats:fetch"

type StatsFetchPayload struct {
	PostID     string `json:"post_id"`
	ExternalID string `json:"external_id"`
	Platform   string `json:"platform"`
	AccountID  string `json:"account_id"`
}
