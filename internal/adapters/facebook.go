package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

// FacebookAdapter publishes listings to a Facebook page feed via the Graph
// API. Feed posts cannot be edited after publish, so UpdatePost reports a
// structured failure.
type FacebookAdapter struct {
	cfg          PlatformConfig
	accessToken  string
	refreshToken string
}

const facebookMaxPhotos = 10

var facebookCategoryTopics = map[string]string{
	CategoryProperty:           "PROPERTY_FOR_SALE",
	CategoryVehicles:           "VEHICLES",
	CategoryMobilesElectronics: "ELECTRONICS",
	CategoryJobs:               "JOBS",
	CategoryServices:           "SERVICES",
	CategoryRentals:            "PROPERTY_FOR_RENT",
	CategoryEducation:          "CLASSES",
	CategoryPets:               "PETS",
	CategoryGeneralSales:       "MISC",
}

func NewFacebookAdapter(cfg PlatformConfig, creds Credentials) *FacebookAdapter {
	def := defaultConfigs[PlatformFacebook]
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = def.APIURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = def.Scopes
	}
	return &FacebookAdapter{
		cfg:          cfg,
		accessToken:  creds.AccessToken,
		refreshToken: creds.RefreshToken,
	}
}

func (a *FacebookAdapter) Name() string { return "Facebook Marketplace" }

func (a *FacebookAdapter) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		RedirectURL:  a.cfg.RedirectURI,
		Scopes:       a.cfg.Scopes,
		Endpoint:     facebook.Endpoint,
	}
}

// AuthURL builds the OAuth consent URL for connecting a page.
func (a *FacebookAdapter) AuthURL(state string) string {
	return a.oauthConfig().AuthCodeURL(state)
}

func (a *FacebookAdapter) Authenticate(ctx context.Context, authCode string) (*AuthResult, error) {
	if authCode == "" {
		return &AuthResult{Success: false, Error: "authorization code is empty"}, nil
	}

	token, err := a.oauthConfig().Exchange(ctx, authCode)
	if err != nil {
		slog.Info(err.Error())
		return &AuthResult{Success: false, Error: err.Error()}, nil
	}

	a.accessToken = token.AccessToken
	a.refreshToken = token.RefreshToken

	return &AuthResult{
		Success:      true,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    int(token.Expiry.Unix()),
	}, nil
}

type facebookError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (a *FacebookAdapter) RefreshAccessToken(ctx context.Context) (*AuthResult, error) {
	if a.accessToken == "" {
		return &AuthResult{Success: false, Error: "no access token available"}, nil
	}

	// Long-lived page tokens are obtained by exchanging the current token.
	endpoint := fmt.Sprintf("%s/oauth/access_token?grant_type=fb_exchange_token&client_id=%s&client_secret=%s&fb_exchange_token=%s",
		a.cfg.APIURL, a.cfg.ClientID, a.cfg.ClientSecret, url.QueryEscape(a.accessToken))

	var resp struct {
		facebookError
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

func (a *FacebookAdapter) PostListing(ctx context.Context, listing *ListingContent) (*PostResult, error) {
	if a.accessToken == "" {
		return &PostResult{Success: false, Error: "not authenticated"}, nil
	}

	var pages struct {
		facebookError
		Data []struct {
			ID          string `json:"id"`
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	err := doJSON(ctx, "GET", fmt.Sprintf("%s/me/accounts?access_token=%s", a.cfg.APIURL, url.QueryEscape(a.accessToken)), nil, nil, &pages)
	if err != nil {
		return nil, err
	}
	if pages.Error != nil {
		return &PostResult{Success: false, Error: pages.Error.Message}, nil
	}
	if len(pages.Data) == 0 {
		return &PostResult{Success: false, Error: "no Facebook pages found"}, nil
	}
	page := pages.Data[0]

	var photoIDs []string
	for _, imageURL := range capList(listing.Images, facebookMaxPhotos) {
		var photo struct {
			facebookError
			ID string `json:"id"`
		}
		err := doJSON(ctx, "POST", fmt.Sprintf("%s/%s/photos", a.cfg.APIURL, page.ID), map[string]any{
			"url":          imageURL,
			"published":    false,
			"access_token": page.AccessToken,
		}, nil, &photo)
		if err != nil || photo.ID == "" {
			slog.Info("facebook: failed to upload photo", "page_id", page.ID)
			continue
		}
		photoIDs = append(photoIDs, photo.ID)
	}

	message := fmt.Sprintf("%s\n\n%s", listing.Title, listing.Description)
	if listing.Location != "" {
		message += "\n\nLocation: " + listing.Location
	}

	body := map[string]any{
		"message":      message,
		"topic":        mapCategory(facebookCategoryTopics, listing.Category, "MISC"),
		"access_token": page.AccessToken,
	}
	if listing.Price > 0 {
		body["price"] = fmt.Sprintf("%.0f", listing.Price)
		body["currency"] = "INR"
	}
	if len(photoIDs) > 0 {
		media := make([]map[string]string, 0, len(photoIDs))
		for _, id := range photoIDs {
			media = append(media, map[string]string{"media_fbid": id})
		}
		body["attached_media"] = media
	}

	var created struct {
		facebookError
		ID string `json:"id"`
	}
	if err := doJSON(ctx, "POST", fmt.Sprintf("%s/%s/feed", a.cfg.APIURL, page.ID), body, nil, &created); err != nil {
		return nil, err
	}
	if created.Error != nil {
		return &PostResult{Success: false, Error: created.Error.Message}, nil
	}

	return &PostResult{
		Success: true,
		PostID:  created.ID,
		PostURL: fmt.Sprintf("%s/%s/posts/%s", a.cfg.BaseURL, page.ID, created.ID),
	}, nil
}

func (a *FacebookAdapter) UpdatePost(ctx context.Context, postID string, updates *ListingContent) (*PostResult, error) {
	return &PostResult{
		Success: false,
		Error:   "Facebook does not allow updating post content; delete and repost instead",
	}, nil
}

func (a *FacebookAdapter) DeletePost(ctx context.Context, postID string) (*PostResult, error) {
	if a.accessToken == "" {
		return &PostResult{Success: false, Error: "not authenticated"}, nil
	}

	var resp facebookError
	endpoint := fmt.Sprintf("%s/%s?access_token=%s", a.cfg.APIURL, postID, url.QueryEscape(a.accessToken))
	if err := doJSON(ctx, "DELETE", endpoint, nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return &PostResult{Success: false, Error: resp.Error.Message}, nil
	}
	return &PostResult{Success: true}, nil
}

func (a *FacebookAdapter) GetPostStats(ctx context.Context, postID string) *PostStats {
	if a.accessToken == "" {
		return nil
	}

	endpoint := fmt.Sprintf("%s/%s/insights?metric=post_impressions,post_engaged_users,post_reactions_by_type_total&access_token=%s",
		a.cfg.APIURL, postID, url.QueryEscape(a.accessToken))

	var resp struct {
		facebookError
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	if err := doJSON(ctx, "GET", endpoint, nil, nil, &resp); err != nil {
		slog.Info("facebook: failed to get post stats", "post_id", postID)
		return nil
	}
	if resp.Error != nil {
		slog.Info("facebook: failed to get post stats", "post_id", postID, "error", resp.Error.Message)
		return nil
	}

	stats := &PostStats{}
	for _, metric := range resp.Data {
		if len(metric.Values) == 0 {
			continue
		}
		v := metric.Values[0].Value
		switch metric.Name {
		case "post_impressions":
			stats.Views = v
		case "post_engaged_users":
			stats.Clicks = v
		case "post_reactions_by_type_total":
			stats.Likes = v
		}
	}
	return stats
}
