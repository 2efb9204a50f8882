package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Adapter is the per-platform publishing contract. Transport and decoding
// problems come back as errors; platform refusals (including "this platform
// cannot update/delete posts") come back as an unsuccessful result with a
// nil error, so callers can tell retryable failures from permanent ones.
type Adapter interface {
	Name() string
	Authenticate(ctx context.Context, authCode string) (*AuthResult, error)
	RefreshAccessToken(ctx context.Context) (*AuthResult, error)
	PostListing(ctx context.Context, listing *ListingContent) (*PostResult, error)
	UpdatePost(ctx context.Context, postID string, updates *ListingContent) (*PostResult, error)
	DeletePost(ctx context.Context, postID string) (*PostResult, error)

	// GetPostStats returns nil on any failure. Stats are telemetry, not
	// correctness, so the adapter logs and swallows errors itself.
	GetPostStats(ctx context.Context, postID string) *PostStats
}

type ListingContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price,omitempty"`
	Location    string   `json:"location,omitempty"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	Videos      []string `json:"videos,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type AuthResult struct {
	Success      bool   `json:"success"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	Error        string `json:"error,omitempty"`
}

type PostResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id,omitempty"`
	PostURL string `json:"post_url,omitempty"`
	Error   string `json:"error,omitempty"`
}

type PostStats struct {
	Views    int `json:"views"`
	Clicks   int `json:"clicks"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// Engagement is the aggregate the post record stores.
func (s *PostStats) Engagement() int {
	return s.Likes + s.Comments + s.Shares
}

// PlatformConfig is the static per-platform setup (OAuth app, endpoints).
type PlatformConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	BaseURL      string
	APIURL       string
}

// Credentials is the per-account material supplied by the account store.
// OAuth platforms use AccessToken/RefreshToken; bot-style platforms use
// BotToken plus a chat or phone-number id.
type Credentials struct {
	AccessToken   string
	RefreshToken  string
	BotToken      string
	ChatID        string
	PhoneNumberID string
}

// Listing category taxonomy shared across the product.
const (
	CategoryProperty           = "PROPERTY"
	CategoryVehicles           = "VEHICLES"
	CategoryMobilesElectronics = "MOBILES_ELECTRONICS"
	CategoryJobs               = "JOBS"
	CategoryServices           = "SERVICES"
	CategoryRentals            = "RENTALS"
	CategoryEducation          = "EDUCATION"
	CategoryPets               = "PETS"
	CategoryGeneralSales       = "GENERAL_SALES"
)

// mapCategory resolves a taxonomy category to a platform bucket, falling back
// to the platform default instead of erroring on unknown categories.
func mapCategory(m map[string]string, category, fallback string) string {
	if v, ok := m[category]; ok {
		return v
	}
	return fallback
}

func capList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// doJSON executes a request and decodes the body into out regardless of the
// HTTP status; platform APIs report failures in their response bodies and
// each adapter inspects its own error fields.
func doJSON(ctx context.Context, method, url string, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// 204s and other empty bodies are not decode failures.
		if errors.Is(err, io.EOF) {
			return nil
		}
		slog.Info(err.Error())
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
