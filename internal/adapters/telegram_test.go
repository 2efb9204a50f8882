package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTelegramTestAdapter(apiURL string) *TelegramAdapter {
	return NewTelegramAdapter(
		PlatformConfig{APIURL: apiURL},
		Credentials{BotToken: "test-token", ChatID: "-100123"},
	)
}

func TestTelegramPostListing(t *testing.T) {
	var sentText string
	var photoCount, videoCount int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bottest-token/sendMessage":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			sentText = body["text"].(string)
			assert.Equal(t, "Markdown", body["parse_mode"])
			json.NewEncoder(w).Encode(map[string]any{
				"ok":     true,
				"result": map[string]any{"message_id": 42},
			})
		case "/bottest-token/sendPhoto":
			photoCount++
			json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"message_id": 43}})
		case "/bottest-token/sendVideo":
			videoCount++
			json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"message_id": 44}})
		default:
			t.Fatalf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	adapter := newTelegramTestAdapter(srv.URL)
	result, err := adapter.PostListing(context.Background(), &ListingContent{
		Title:       "2BHK Apartment",
		Description: "Spacious flat near the station",
		Price:       25000,
		Location:    "Pune",
		Category:    CategoryRentals,
		Images:      []string{"https://cdn.example.com/1.jpg", "https://cdn.example.com/2.jpg"},
		Videos:      []string{"https://cdn.example.com/tour.mp4", "https://cdn.example.com/extra.mp4"},
		Tags:        []string{"rentals", "pune"},
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, "42", result.PostID)
	assert.Equal(t, "https://t.me/c/-100123/42", result.PostURL)

	assert.Contains(t, sentText, "*2BHK Apartment*")
	assert.Contains(t, sentText, "Location: Pune")
	assert.Contains(t, sentText, "Category: Rentals")
	assert.Contains(t, sentText, "#rentals #pune")

	assert.Equal(t, 2, photoCount)
	// One video per post, the rest are dropped.
	assert.Equal(t, 1, videoCount)
}

func TestTelegramPostListingRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "chat not found"})
	}))
	defer srv.Close()

	result, err := newTelegramTestAdapter(srv.URL).PostListing(context.Background(), &ListingContent{
		Title: "Anything",
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "chat not found", result.Error)
}

func TestTelegramPostListingMissingCredentials(t *testing.T) {
	adapter := NewTelegramAdapter(PlatformConfig{}, Credentials{})

	result, err := adapter.PostListing(context.Background(), &ListingContent{Title: "x"})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestTelegramUpdatePostRefused(t *testing.T) {
	result, err := newTelegramTestAdapter("http://unused").UpdatePost(context.Background(), "42", nil)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "does not allow updating")
}

func TestTelegramDeletePost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/deleteMessage", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": true})
	}))
	defer srv.Close()

	result, err := newTelegramTestAdapter(srv.URL).DeletePost(context.Background(), "42")

	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestTelegramGetPostStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"id": -100123}})
	}))
	defer srv.Close()

	stats := newTelegramTestAdapter(srv.URL).GetPostStats(context.Background(), "42")

	// The Bot API has no per-message counters; a reachable chat yields zeros.
	require.NotNil(t, stats)
	assert.Equal(t, 0, stats.Engagement())
}

func TestTelegramGetPostStatsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "forbidden"})
	}))
	defer srv.Close()

	assert.Nil(t, newTelegramTestAdapter(srv.URL).GetPostStats(context.Background(), "42"))
}

func TestTelegramAuthenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bottest-token/getMe":
			json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"username": "listing_bot"}})
		case "/bottest-token/getChat":
			json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{"id": -100123}})
		default:
			t.Fatalf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	result, err := newTelegramTestAdapter(srv.URL).Authenticate(context.Background(), "")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "test-token", result.AccessToken)
}
