package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// TelegramAdapter publishes listings as channel messages through the Bot API.
// Telegram is bot-token based, not OAuth: Authenticate validates the token and
// chat instead of exchanging a code.
type TelegramAdapter struct {
	cfg      PlatformConfig
	botToken string
	chatID   string
}

const telegramMaxPhotos = 10

var telegramCategoryLabels = map[string]string{
	CategoryProperty:           "Property",
	CategoryVehicles:           "Vehicles",
	CategoryMobilesElectronics: "Mobiles & Electronics",
	CategoryJobs:               "Jobs",
	CategoryServices:           "Services",
	CategoryRentals:            "Rentals",
	CategoryEducation:          "Education",
	CategoryPets:               "Pets",
	CategoryGeneralSales:       "For Sale",
}

func NewTelegramAdapter(cfg PlatformConfig, creds Credentials) *TelegramAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultConfigs[PlatformTelegram].BaseURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultConfigs[PlatformTelegram].APIURL
	}
	return &TelegramAdapter{
		cfg:      cfg,
		botToken: creds.BotToken,
		chatID:   creds.ChatID,
	}
}

func (a *TelegramAdapter) Name() string { return "Telegram" }

type telegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type telegramMessage struct {
	MessageID int64 `json:"message_id"`
}

func (a *TelegramAdapter) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", a.cfg.APIURL, a.botToken, name)
}

func (a *TelegramAdapter) Authenticate(ctx context.Context, authCode string) (*AuthResult, error) {
	if a.botToken == "" || a.chatID == "" {
		return &AuthResult{Success: false, Error: "bot token and chat ID are required for Telegram"}, nil
	}

	var me telegramResponse
	if err := doJSON(ctx, "GET", a.method("getMe"), nil, nil, &me); err != nil {
		return nil, err
	}
	if !me.OK {
		return &AuthResult{Success: false, Error: orDefault(me.Description, "invalid bot token")}, nil
	}

	var chat telegramResponse
	if err := doJSON(ctx, "GET", a.method("getChat")+"?chat_id="+a.chatID, nil, nil, &chat); err != nil {
		return nil, err
	}
	if !chat.OK {
		return &AuthResult{Success: false, Error: orDefault(chat.Description, "invalid chat ID or no access to chat")}, nil
	}

	return &AuthResult{Success: true, AccessToken: a.botToken}, nil
}

// Bot tokens do not expire.
func (a *TelegramAdapter) RefreshAccessToken(ctx context.Context) (*AuthResult, error) {
	return &AuthResult{Success: true, AccessToken: a.botToken}, nil
}

func (a *TelegramAdapter) PostListing(ctx context.Context, listing *ListingContent) (*PostResult, error) {
	if a.botToken == "" || a.chatID == "" {
		return &PostResult{Success: false, Error: "bot token and chat ID are required"}, nil
	}

	var text strings.Builder
	fmt.Fprintf(&text, "*%s*\n\n%s\n\n", listing.Title, listing.Description)
	if listing.Price > 0 {
		fmt.Fprintf(&text, "Price: %.0f\n", listing.Price)
	}
	if listing.Location != "" {
		fmt.Fprintf(&text, "Location: %s\n", listing.Location)
	}
	fmt.Fprintf(&text, "Category: %s\n", mapCategory(telegramCategoryLabels, listing.Category, "For Sale"))
	if len(listing.Tags) > 0 {
		fmt.Fprintf(&text, "\n#%s", strings.Join(listing.Tags, " #"))
	}

	var sent telegramResponse
	err := doJSON(ctx, "POST", a.method("sendMessage"), map[string]any{
		"chat_id":    a.chatID,
		"text":       text.String(),
		"parse_mode": "Markdown",
	}, nil, &sent)
	if err != nil {
		return nil, err
	}
	if !sent.OK {
		return &PostResult{Success: false, Error: sent.Description}, nil
	}

	var msg telegramMessage
	if err := json.Unmarshal(sent.Result, &msg); err != nil {
		return nil, err
	}

	for _, imageURL := range capList(listing.Images, telegramMaxPhotos) {
		var photo telegramResponse
		err := doJSON(ctx, "POST", a.method("sendPhoto"), map[string]any{
			"chat_id": a.chatID,
			"photo":   imageURL,
		}, nil, &photo)
		if err != nil || !photo.OK {
			slog.Info("telegram: failed to send photo", "chat_id", a.chatID)
		}
	}

	// One video per post; the Bot API has no video albums.
	for _, videoURL := range capList(listing.Videos, 1) {
		var video telegramResponse
		err := doJSON(ctx, "POST", a.method("sendVideo"), map[string]any{
			"chat_id": a.chatID,
			"video":   videoURL,
			"caption": listing.Title,
		}, nil, &video)
		if err != nil || !video.OK {
			slog.Info("telegram: failed to send video", "chat_id", a.chatID)
		}
	}

	messageID := fmt.Sprintf("%d", msg.MessageID)
	return &PostResult{
		Success: true,
		PostID:  messageID,
		PostURL: fmt.Sprintf("%s/c/%s/%s", a.cfg.BaseURL, a.chatID, messageID),
	}, nil
}

func (a *TelegramAdapter) UpdatePost(ctx context.Context, postID string, updates *ListingContent) (*PostResult, error) {
	return &PostResult{
		Success: false,
		Error:   "Telegram does not allow updating messages; delete and resend instead",
	}, nil
}

func (a *TelegramAdapter) DeletePost(ctx context.Context, postID string) (*PostResult, error) {
	if a.botToken == "" || a.chatID == "" {
		return &PostResult{Success: false, Error: "bot token and chat ID are required"}, nil
	}

	var resp telegramResponse
	err := doJSON(ctx, "POST", a.method("deleteMessage"), map[string]any{
		"chat_id":    a.chatID,
		"message_id": postID,
	}, nil, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return &PostResult{Success: false, Error: resp.Description}, nil
	}
	return &PostResult{Success: true}, nil
}

// The Bot API exposes no per-message view or reaction counters.
func (a *TelegramAdapter) GetPostStats(ctx context.Context, postID string) *PostStats {
	if a.botToken == "" || a.chatID == "" {
		return nil
	}

	var chat telegramResponse
	if err := doJSON(ctx, "GET", a.method("getChat")+"?chat_id="+a.chatID, nil, nil, &chat); err != nil {
		slog.Info("telegram: failed to get post stats", "post_id", postID)
		return nil
	}
	if !chat.OK {
		return nil
	}
	return &PostStats{}
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
