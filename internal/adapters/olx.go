package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// OLXAdapter publishes listings as classified ads. OLX is the only platform
// here that supports updating and deleting published posts.
type OLXAdapter struct {
	cfg          PlatformConfig
	accessToken  string
	refreshToken string
}

const olxMaxImages = 12

var olxCategorySlugs = map[string]string{
	CategoryProperty:           "real-estate",
	CategoryVehicles:           "vehicles",
	CategoryMobilesElectronics: "mobiles-phones-tablets",
	CategoryJobs:               "jobs",
	CategoryServices:           "services",
	CategoryRentals:            "real-estate-for-rent",
	CategoryEducation:          "education-learning",
	CategoryPets:               "pets",
	CategoryGeneralSales:       "home-living",
}

func NewOLXAdapter(cfg PlatformConfig, creds Credentials) *OLXAdapter {
	def := defaultConfigs[PlatformOLX]
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = def.APIURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = def.Scopes
	}
	return &OLXAdapter{
		cfg:          cfg,
		accessToken:  creds.AccessToken,
		refreshToken: creds.RefreshToken,
	}
}

func (a *OLXAdapter) Name() string { return "OLX" }

type olxTokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (o *olxTokenResponse) errMessage() string {
	if o.ErrorDescription != "" {
		return o.ErrorDescription
	}
	return o.Error
}

func (a *OLXAdapter) Authenticate(ctx context.Context, authCode string) (*AuthResult, error) {
	if authCode == "" {
		return &AuthResult{Success: false, Error: "authorization code is empty"}, nil
	}

	var resp olxTokenResponse
	err := doJSON(ctx, "POST", a.cfg.APIURL+"/oauth/token", map[string]any{
		"grant_type":    "authorization_code",
		"code":          authCode,
		"client_id":     a.cfg.ClientID,
		"client_secret": a.cfg.ClientSecret,
		"redirect_uri":  a.cfg.RedirectURI,
	}, nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return &AuthResult{Success: false, Error: resp.errMessage()}, nil
	}

	a.accessToken = resp.AccessToken
	a.refreshToken = resp.RefreshToken
	return &AuthResult{
		Success:      true,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

func (a *OLXAdapter) RefreshAccessToken(ctx context.Context) (*AuthResult, error) {
	if a.refreshToken == "" {
		return &AuthResult{Success: false, Error: "no refresh token available"}, nil
	}

	var resp olxTokenResponse
	err := doJSON(ctx, "POST", a.cfg.APIURL+"/oauth/token", map[string]any{
		"grant_type":    "refresh_token",
		"refresh_token": a.refreshToken,
		"client_id":     a.cfg.ClientID,
		"client_secret": a.cfg.ClientSecret,
	}, nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return &AuthResult{Success: false, Error: resp.errMessage()}, nil
	}

	a.accessToken = resp.AccessToken
	a.refreshToken = resp.RefreshToken
	return &AuthResult{
		Success:      true,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

func (a *OLXAdapter) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + a.accessToken}
}

type olxAdResponse struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func olxLocation(location string) map[string]string {
	city := "Mumbai"
	if parts := strings.Split(location, ","); len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		city = strings.TrimSpace(parts[0])
	}
	return map[string]string{"city": city, "country": "India"}
}

func (a *OLXAdapter) PostListing(ctx context.Context, listing *ListingContent) (*PostResult, error) {
	if a.accessToken == "" {
		return &PostResult{Success: false, Error: "not authenticated"}, nil
	}

	images := make([]map[string]any, 0, len(listing.Images))
	for i, imageURL := range capList(listing.Images, olxMaxImages) {
		images = append(images, map[string]any{"url": imageURL, "order": i})
	}

	body := map[string]any{
		"title":       listing.Title,
		"description": listing.Description,
		"category_id": mapCategory(olxCategorySlugs, listing.Category, "home-living"),
		"price":       map[string]any{"value": listing.Price, "currency": "INR"},
		"location":    olxLocation(listing.Location),
		"images":      images,
	}

	var resp olxAdResponse
	if err := doJSON(ctx, "POST", a.cfg.APIURL+"/ads", body, a.authHeaders(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return &PostResult{Success: false, Error: orDefault(resp.ErrorDescription, resp.Error)}, nil
	}

	return &PostResult{
		Success: true,
		PostID:  resp.ID,
		PostURL: fmt.Sprintf("%s/item/%s", a.cfg.BaseURL, resp.ID),
	}, nil
}

func (a *OLXAdapter) UpdatePost(ctx context.Context, postID string, updates *ListingContent) (*PostResult, error) {
	if a.accessToken == "" {
		return &PostResult{Success: false, Error: "not authenticated"}, nil
	}

	body := map[string]any{}
	if updates.Title != "" {
		body["title"] = updates.Title
	}
	if updates.Description != "" {
		body["description"] = updates.Description
	}
	if updates.Price > 0 {
		body["price"] = map[string]any{"value": updates.Price, "currency": "INR"}
	}
	if updates.Location != "" {
		body["location"] = olxLocation(updates.Location)
	}

	var resp olxAdResponse
	if err := doJSON(ctx, "PUT", a.cfg.APIURL+"/ads/"+postID, body, a.authHeaders(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return &PostResult{Success: false, Error: orDefault(resp.ErrorDescription, resp.Error)}, nil
	}

	return &PostResult{
		Success: true,
		PostID:  resp.ID,
		PostURL: fmt.Sprintf("%s/item/%s", a.cfg.BaseURL, resp.ID),
	}, nil
}

func (a *OLXAdapter) DeletePost(ctx context.Context, postID string) (*PostResult, error) {
	if a.accessToken == "" {
		return &PostResult{Success: false, Error: "not authenticated"}, nil
	}

	// Successful deletes come back as 204 with an empty body.
	var resp olxAdResponse
	if err := doJSON(ctx, "DELETE", a.cfg.APIURL+"/ads/"+postID, nil, a.authHeaders(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return &PostResult{Success: false, Error: orDefault(resp.ErrorDescription, resp.Error)}, nil
	}
	return &PostResult{Success: true}, nil
}

func (a *OLXAdapter) GetPostStats(ctx context.Context, postID string) *PostStats {
	if a.accessToken == "" {
		return nil
	}

	var resp struct {
		Views            int    `json:"views"`
		Favorites        int    `json:"favorites"`
		Messages         int    `json:"messages"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	err := doJSON(ctx, "GET", a.cfg.APIURL+"/ads/"+postID+"/stats", nil, a.authHeaders(), &resp)
	if err != nil {
		slog.Info("olx: failed to get post stats", "post_id", postID)
		return nil
	}
	if resp.Error != "" {
		slog.Info("olx: failed to get post stats", "post_id", postID, "error", resp.Error)
		return nil
	}

	return &PostStats{
		Views:    resp.Views,
		Likes:    resp.Favorites,
		Comments: resp.Messages,
	}
}
