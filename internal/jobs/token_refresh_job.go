package job

import (
	"context"
	"log/slog"
	"time"

	config "github.com/jitenkr2030/onetap-repost/configs"
	"github.com/jitenkr2030/onetap-repost/internal/repository"
	"github.com/jitenkr2030/onetap-repost/internal/service"
	"github.com/jitenkr2030/onetap-repost/pkg/utils"
)

// TokenRefreshJob keeps stored account tokens usable by refreshing the ones
// that expire soon. Bot-style platforms report a successful no-op refresh and
// are skipped.
type TokenRefreshJob struct {
	cfg      config.Config
	accounts repository.SocialAccountRepository
	platform service.PlatformService
}

func NewTokenRefreshJob(
	cfg config.Config,
	accounts repository.SocialAccountRepository,
	platform service.PlatformService) *TokenRefreshJob {
	return &TokenRefreshJob{
		cfg:      cfg,
		accounts: accounts,
		platform: platform,
	}
}

func (j *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	now := time.Now()
	accounts, err := j.accounts.ListExpiringBetween(ctx, now, now.Add(30*time.Minute))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, acc := range accounts {
		adapter, err := j.platform.AdapterFor(ctx, acc.Platform, acc)
		if err != nil {
			slog.Info("token refresh: failed to resolve adapter", "account_id", acc.ID, "error", err)
			continue
		}

		result, err := adapter.RefreshAccessToken(ctx)
		if err != nil || !result.Success {
			slog.Info("unable to refresh tokens", "platform", acc.Platform, "account_id", acc.ID)
			continue
		}
		if result.AccessToken == "" {
			continue
		}

		encryptedAccess, err := utils.Encrypt([]byte(result.AccessToken), []byte(j.cfg.SecretKey))
		if err != nil {
			slog.Info(err.Error())
			continue
		}

		encryptedRefresh := acc.RefreshToken
		if result.RefreshToken != "" {
			encryptedRefresh, err = utils.Encrypt([]byte(result.RefreshToken), []byte(j.cfg.SecretKey))
			if err != nil {
				slog.Info(err.Error())
				continue
			}
		}

		expiresAt := acc.TokenExpiresAt
		if result.ExpiresIn > 0 {
			expiresAt = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
		}

		if err := j.accounts.SetTokens(ctx, acc.ID, encryptedAccess, encryptedRefresh, expiresAt); err != nil {
			slog.Info("token refresh: failed to persist tokens", "account_id", acc.ID, "error", err)
		}
	}
}
