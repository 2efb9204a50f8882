package adapters

import (
	"fmt"
	"strings"
)

const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformOLX       = "olx"
	PlatformTelegram  = "telegram"
	PlatformWhatsApp  = "whatsapp"
)

type constructor func(cfg PlatformConfig, creds Credentials) Adapter

// Static registry. Adding a platform means registering one more entry here.
var registry = map[string]constructor{
	PlatformFacebook:  func(cfg PlatformConfig, creds Credentials) Adapter { return NewFacebookAdapter(cfg, creds) },
	PlatformInstagram: func(cfg PlatformConfig, creds Credentials) Adapter { return NewInstagramAdapter(cfg, creds) },
	PlatformOLX:       func(cfg PlatformConfig, creds Credentials) Adapter { return NewOLXAdapter(cfg, creds) },
	PlatformTelegram:  func(cfg PlatformConfig, creds Credentials) Adapter { return NewTelegramAdapter(cfg, creds) },
	PlatformWhatsApp:  func(cfg PlatformConfig, creds Credentials) Adapter { return NewWhatsAppAdapter(cfg, creds) },
}

var defaultConfigs = map[string]PlatformConfig{
	PlatformFacebook: {
		BaseURL: "https://www.facebook.com",
		APIURL:  "https://graph.facebook.com/v18.0",
		Scopes:  []string{"pages_manage_posts", "pages_read_engagement", "pages_manage_metadata"},
	},
	PlatformInstagram: {
		BaseURL: "https://www.instagram.com",
		APIURL:  "https://graph.instagram.com",
		Scopes:  []string{"instagram_content", "instagram_basic"},
	},
	PlatformOLX: {
		BaseURL: "https://www.olx.in",
		APIURL:  "https://api.olx.com",
		Scopes:  []string{"ads", "profile"},
	},
	PlatformTelegram: {
		BaseURL: "https://t.me",
		APIURL:  "https://api.telegram.org",
	},
	PlatformWhatsApp: {
		BaseURL: "https://wa.me",
		APIURL:  "https://graph.facebook.com/v15.0",
	},
}

// CreateAdapter resolves a platform identifier to a configured adapter.
// Unknown identifiers fail before any remote call is made.
func CreateAdapter(platform string, cfg PlatformConfig, creds Credentials) (Adapter, error) {
	build, ok := registry[strings.ToLower(platform)]
	if !ok {
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
	return build(cfg, creds), nil
}

func IsPlatformSupported(platform string) bool {
	_, ok := registry[strings.ToLower(platform)]
	return ok
}

func SupportedPlatforms() []string {
	platforms := make([]string, 0, len(registry))
	for name := range registry {
		platforms = append(platforms, name)
	}
	return platforms
}

// GetDefaultConfig returns the platform's default endpoints and scopes.
// Unknown platforms get a zero config.
func GetDefaultConfig(platform string) PlatformConfig {
	return defaultConfigs[strings.ToLower(platform)]
}
