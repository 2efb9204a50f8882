package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// WhatsAppAdapter broadcasts listings through the WhatsApp Business Cloud
// API. Messages cannot be edited or recalled once delivered, and the API
// exposes no engagement counters.
type WhatsAppAdapter struct {
	cfg           PlatformConfig
	accessToken   string
	phoneNumberID string
	recipient     string
}

var whatsappCategoryLabels = map[string]string{
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

func NewWhatsAppAdapter(cfg PlatformConfig, creds Credentials) *WhatsAppAdapter {
	def := defaultConfigs[PlatformWhatsApp]
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = def.APIURL
	}
	return &WhatsAppAdapter{
		cfg:           cfg,
		accessToken:   creds.AccessToken,
		phoneNumberID: creds.PhoneNumberID,
		recipient:     creds.ChatID,
	}
}

func (a *WhatsAppAdapter) Name() string { return "WhatsApp Business" }

type whatsappError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *WhatsAppAdapter) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + a.accessToken}
}

func (a *WhatsAppAdapter) Authenticate(ctx context.Context, authCode string) (*AuthResult, error) {
	if a.accessToken == "" || a.phoneNumberID == "" {
		return &AuthResult{Success: false, Error: "access token and phone number ID are required for WhatsApp"}, nil
	}

	// Validate the token by fetching the phone number resource.
	var resp struct {
		whatsappError
		ID string `json:"id"`
	}
	endpoint := fmt.Sprintf("%s/%s", a.cfg.APIURL, a.phoneNumberID)
	if err := doJSON(ctx, "GET", endpoint, nil, a.authHeaders(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return &AuthResult{Success: false, Error: resp.Error.Message}, nil
	}

	return &AuthResult{Success: true, AccessToken: a.accessToken}, nil
}

// System-user tokens for the Cloud API do not expire.
func (a *WhatsAppAdapter) RefreshAccessToken(ctx context.Context) (*AuthResult, error) {
	return &AuthResult{Success: true, AccessToken: a.accessToken}, nil
}

func (a *WhatsAppAdapter) PostListing(ctx context.Context, listing *ListingContent) (*PostResult, error) {
	if a.accessToken == "" || a.phoneNumberID == "" {
		return &PostResult{Success: false, Error: "access token and phone number ID are required"}, nil
	}
	if a.recipient == "" {
		return &PostResult{Success: false, Error: "no recipient configured"}, nil
	}

	var text strings.Builder
	fmt.Fprintf(&text, "*%s*\n\n%s\n\n", listing.Title, listing.Description)
	if listing.Price > 0 {
		fmt.Fprintf(&text, "Price: %.0f\n", listing.Price)
	}
	if listing.Location != "" {
		fmt.Fprintf(&text, "Location: %s\n", listing.Location)
	}
	fmt.Fprintf(&text, "Category: %s", mapCategory(whatsappCategoryLabels, listing.Category, "For Sale"))

	body := map[string]any{
		"messaging_product": "whatsapp",
		"to":                a.recipient,
	}
	// One media item per message; the listing image doubles as the message
	// body with the text as its caption.
	if images := capList(listing.Images, 1); len(images) > 0 {
		body["type"] = "image"
		body["image"] = map[string]string{"link": images[0], "caption": text.String()}
	} else {
		body["type"] = "text"
		body["text"] = map[string]any{"body": text.String()}
	}

	var resp struct {
		whatsappError
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	endpoint := fmt.Sprintf("%s/%s/messages", a.cfg.APIURL, a.phoneNumberID)
	if err := doJSON(ctx, "POST", endpoint, body, a.authHeaders(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return &PostResult{Success: false, Error: resp.Error.Message}, nil
	}
	if len(resp.Messages) == 0 {
		return &PostResult{Success: false, Error: "message not delivered"}, nil
	}

	return &PostResult{
		Success: true,
		PostID:  resp.Messages[0].ID,
		PostURL: fmt.Sprintf("%s/%s", a.cfg.BaseURL, a.recipient),
	}, nil
}

func (a *WhatsAppAdapter) UpdatePost(ctx context.Context, postID string, updates *ListingContent) (*PostResult, error) {
	return &PostResult{
		Success: false,
		Error:   "WhatsApp does not allow updating sent messages",
	}, nil
}

func (a *WhatsAppAdapter) DeletePost(ctx context.Context, postID string) (*PostResult, error) {
	return &PostResult{
		Success: false,
		Error:   "WhatsApp does not allow deleting sent messages",
	}, nil
}

// The Cloud API reports delivery through webhooks only; there is nothing to
// poll for a sent message.
func (a *WhatsAppAdapter) GetPostStats(ctx context.Context, postID string) *PostStats {
	slog.Info("whatsapp: per-message stats are not available", "post_id", postID)
	return nil
}
