package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// InstagramAdapter publishes listings as media posts through the Instagram
// Graph API (container create + publish). Instagram supports neither editing
// nor deleting published media through the API, so both report structured
// failures.
type InstagramAdapter struct {
	cfg         PlatformConfig
	accessToken string
}

const instagramMaxCarousel = 10

var instagramCategoryHashtags = map[string]string{
	CategoryProperty:           "realestate",
	CategoryVehicles:           "carsforsale",
	CategoryMobilesElectronics: "gadgets",
	CategoryJobs:               "hiring",
	CategoryServices:           "localbusiness",
	CategoryRentals:            "forrent",
	CategoryEducation:          "learning",
	CategoryPets:               "petsofinstagram",
	CategoryGeneralSales:       "forsale",
}

func NewInstagramAdapter(cfg PlatformConfig, creds Credentials) *InstagramAdapter {
	def := defaultConfigs[PlatformInstagram]
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = def.APIURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = def.Scopes
	}
	return &InstagramAdapter{cfg: cfg, accessToken: creds.AccessToken}
}

func (a *InstagramAdapter) Name() string { return "Instagram" }

type instagramError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *InstagramAdapter) Authenticate(ctx context.Context, authCode string) (*AuthResult, error) {
	if authCode == "" {
		return &AuthResult{Success: false, Error: "authorization code is empty"}, nil
	}

	endpoint := fmt.Sprintf("%s/oauth/access_token?client_id=%s&client_secret=%s&grant_type=authorization_code&redirect_uri=%s&code=%s",
		a.cfg.APIURL, a.cfg.ClientID, a.cfg.ClientSecret, url.QueryEscape(a.cfg.RedirectURI), url.QueryEscape(authCode))

	var resp struct {
		instagramError
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := doJSON(ctx, "POST", endpoint, nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return &AuthResult{Success: false, Error: resp.Error.Message}, nil
	}

	a.accessToken = resp.AccessToken
	return &AuthResult{Success: true, AccessToken: resp.AccessToken, ExpiresIn: resp.ExpiresIn}, nil
}

func (a *InstagramAdapter) RefreshAccessToken(ctx context.Context) (*AuthResult, error) {
	if a.accessToken == "" {
		return &AuthResult{Success: false, Error: "no access token available"}, nil
	}

	endpoint := fmt.Sprintf("%s/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		a.cfg.APIURL, url.QueryEscape(a.accessToken))

	var resp struct {
		instagramError
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := doJSON(ctx, "GET", endpoint, nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return &AuthResult{Success: false, Error: resp.Error.Message}, nil
	}

	a.accessToken = resp.AccessToken
	return &AuthResult{Success: true, AccessToken: resp.AccessToken, ExpiresIn: resp.ExpiresIn}, nil
}

func (a *InstagramAdapter) buildCaption(listing *ListingContent) string {
	var caption strings.Builder
	fmt.Fprintf(&caption, "%s\n\n%s", listing.Title, listing.Description)
	if listing.Price > 0 {
		fmt.Fprintf(&caption, "\n\nPrice: %.0f", listing.Price)
	}
	if listing.Location != "" {
		fmt.Fprintf(&caption, "\nLocation: %s", listing.Location)
	}

	hashtags := []string{mapCategory(instagramCategoryHashtags, listing.Category, "forsale")}
	hashtags = append(hashtags, listing.Tags...)
	caption.WriteString("\n\n#" + strings.Join(hashtags, " #"))
	return caption.String()
}

func (a *InstagramAdapter) createContainer(ctx context.Context, body map[string]any) (string, error) {
	body["access_token"] = a.accessToken

	var resp struct {
		instagramError
		ID string `json:"id"`
	}
	if err := doJSON(ctx, "POST", a.cfg.APIURL+"/me/media", body, nil, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("instagram: %s", resp.Error.Message)
	}
	return resp.ID, nil
}

func (a *InstagramAdapter) PostListing(ctx context.Context, listing *ListingContent) (*PostResult, error) {
	if a.accessToken == "" {
		return &PostResult{Success: false, Error: "not authenticated"}, nil
	}
	if len(listing.Images) == 0 && len(listing.Videos) == 0 {
		return &PostResult{Success: false, Error: "Instagram requires at least one image or video"}, nil
	}

	caption := a.buildCaption(listing)

	var containerID string
	var err error
	images := capList(listing.Images, instagramMaxCarousel)

	switch {
	case len(listing.Videos) > 0:
		containerID, err = a.createContainer(ctx, map[string]any{
			"media_type": "REELS",
			"video_url":  listing.Videos[0],
			"caption":    caption,
		})
	case len(images) == 1:
		containerID, err = a.createContainer(ctx, map[string]any{
			"image_url": images[0],
			"caption":   caption,
		})
	default:
		children := make([]string, 0, len(images))
		for _, imageURL := range images {
			child, cerr := a.createContainer(ctx, map[string]any{
				"image_url":        imageURL,
				"is_carousel_item": true,
			})
			if cerr != nil {
				slog.Info("instagram: failed to create carousel item")
				continue
			}
			children = append(children, child)
		}
		if len(children) == 0 {
			return &PostResult{Success: false, Error: "media upload failed"}, nil
		}
		containerID, err = a.createContainer(ctx, map[string]any{
			"media_type": "CAROUSEL",
			"children":   strings.Join(children, ","),
			"caption":    caption,
		})
	}
	if err != nil {
		return &PostResult{Success: false, Error: err.Error()}, nil
	}

	var published struct {
		instagramError
		ID string `json:"id"`
	}
	err = doJSON(ctx, "POST", a.cfg.APIURL+"/me/media_publish", map[string]any{
		"creation_id":  containerID,
		"access_token": a.accessToken,
	}, nil, &published)
	if err != nil {
		return nil, err
	}
	if published.Error != nil {
		return &PostResult{Success: false, Error: published.Error.Message}, nil
	}

	return &PostResult{
		Success: true,
		PostID:  published.ID,
		PostURL: fmt.Sprintf("%s/p/%s", a.cfg.BaseURL, published.ID),
	}, nil
}

func (a *InstagramAdapter) UpdatePost(ctx context.Context, postID string, updates *ListingContent) (*PostResult, error) {
	return &PostResult{
		Success: false,
		Error:   "Instagram does not allow updating published media",
	}, nil
}

func (a *InstagramAdapter) DeletePost(ctx context.Context, postID string) (*PostResult, error) {
	return &PostResult{
		Success: false,
		Error:   "Instagram does not allow deleting media through the API",
	}, nil
}

func (a *InstagramAdapter) GetPostStats(ctx context.Context, postID string) *PostStats {
	if a.accessToken == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/%s?fields=like_count,comments_count&access_token=%s",
		a.cfg.APIURL, postID, url.QueryEscape(a.accessToken))

	var resp struct {
		instagramError
		LikeCount     int `json:"like_count"`
		CommentsCount int `json:"comments_count"`
	}
	if err := doJSON(ctx, "GET", endpoint, nil, nil, &resp); err != nil {
		slog.Info("instagram: failed to get post stats", "post_id", postID)
		return nil
	}
	if resp.Error != nil {
		slog.Info("instagram: failed to get post stats", "post_id", postID, "error", resp.Error.Message)
		return nil
	}

	return &PostStats{Likes: resp.LikeCount, Comments: resp.CommentsCount}
}
