package service

import (
	"context"
	"log/slog"

	config "github.com/jitenkr2030/onetap-repost/configs"
	"github.com/jitenkr2030/onetap-repost/internal/adapters"
	"github.com/jitenkr2030/onetap-repost/internal/models"
	"github.com/jitenkr2030/onetap-repost/pkg/utils"
)

// PlatformService resolves a platform name plus a stored account into a
// ready-to-use adapter: app credentials from config, account tokens decrypted
// from the store.
type PlatformService interface {
	AdapterFor(ctx context.Context, platform string, account *models.SocialAccount) (adapters.Adapter, error)
	ConfigFor(platform string) adapters.PlatformConfig
	CredentialsFor(account *models.SocialAccount) (adapters.Credentials, error)
}

type platformService struct {
	cfg config.Config
}

func NewPlatformService(cfg config.Config) PlatformService {
	return &platformService{cfg: cfg}
}

func (s *platformService) ConfigFor(platform string) adapters.PlatformConfig {
	pc := adapters.GetDefaultConfig(platform)

	switch platform {
	case adapters.PlatformFacebook:
		pc.ClientID = s.cfg.FacebookClientID
		pc.ClientSecret = s.cfg.FacebookClientSecret
		pc.RedirectURI = s.cfg.FacebookRedirectURI
	case adapters.PlatformInstagram:
		pc.ClientID = s.cfg.InstagramClientID
		pc.ClientSecret = s.cfg.InstagramClientSecret
		pc.RedirectURI = s.cfg.InstagramRedirectURI
	case adapters.PlatformOLX:
		pc.ClientID = s.cfg.OLXClientID
		pc.ClientSecret = s.cfg.OLXClientSecret
		pc.RedirectURI = s.cfg.OLXRedirectURI
	}

	return pc
}

func (s *platformService) CredentialsFor(account *models.SocialAccount) (adapters.Credentials, error) {
	var creds adapters.Credentials
	if account == nil {
		// Bot-style platforms can run off process-level credentials alone.
		creds.BotToken = s.cfg.TelegramBotToken
		creds.ChatID = s.cfg.TelegramChatID
		creds.AccessToken = s.cfg.WhatsAppAccessToken
		creds.PhoneNumberID = s.cfg.WhatsAppPhoneNumberID
		return creds, nil
	}

	if account.AccessToken != "" {
		accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
		if err != nil {
			slog.Info(err.Error())
			return creds, err
		}
		creds.AccessToken = accessToken
	}
	if account.RefreshToken != "" {
		refreshToken, err := utils.Decrypt(account.RefreshToken, []byte(s.cfg.SecretKey))
		if err != nil {
			slog.Info(err.Error())
			return creds, err
		}
		creds.RefreshToken = refreshToken
	}

	switch account.Platform {
	case adapters.PlatformTelegram:
		creds.BotToken = creds.AccessToken
		if creds.BotToken == "" {
			creds.BotToken = s.cfg.TelegramBotToken
		}
		creds.ChatID = account.ChatID
		if creds.ChatID == "" {
			creds.ChatID = s.cfg.TelegramChatID
		}
	case adapters.PlatformWhatsApp:
		if creds.AccessToken == "" {
			creds.AccessToken = s.cfg.WhatsAppAccessToken
		}
		creds.PhoneNumberID = account.PhoneNumberID
		if creds.PhoneNumberID == "" {
			creds.PhoneNumberID = s.cfg.WhatsAppPhoneNumberID
		}
		creds.ChatID = account.ChatID
	}

	return creds, nil
}

func (s *platformService) AdapterFor(ctx context.Context, platform string, account *models.SocialAccount) (adapters.Adapter, error) {
	creds, err := s.CredentialsFor(account)
	if err != nil {
		return nil, err
	}
	return adapters.CreateAdapter(platform, s.ConfigFor(platform), creds)
}
