// Package spotify is the client for the external music catalog.
//
// Response types follow https://developer.spotify.com/documentation/web-api/reference/
package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultBaseURL  = "https://api.spotify.com/v1"
)

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Artist represents an artist as returned inside track objects.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album represents the album object attached to a track.
type Album struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Track represents a track from the top-tracks endpoint. PreviewURL is null
// for many tracks; that is expected, not an error.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	PreviewURL *string  `json:"preview_url"`
}

// Client calls the Spotify web API with app-level (client credentials) auth.
type Client struct {
	clientID     string
	clientSecret string
	market       string
	tokenURL     string
	baseURL      string
	httpClient   *http.Client
}

// NewClient creates a new API client.
func NewClient(clientID, clientSecret, market string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		market:       market,
		tokenURL:     defaultTokenURL,
		baseURL:      defaultBaseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// SetBaseURL overrides the API base URL.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// SetTokenURL overrides the token endpoint URL.
func (c *Client) SetTokenURL(u string) {
	c.tokenURL = u
}

// Token performs the client-credentials exchange and returns a short-lived
// bearer token.
func (c *Client) Token(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty access_token")
	}
	return body.AccessToken, nil
}

// TopTracks fetches an artist's top tracks for the configured market.
func (c *Client) TopTracks(ctx context.Context, token, artistID string) ([]Track, error) {
	endpoint := fmt.Sprintf("%s/artists/%s/top-tracks?market=%s",
		c.baseURL, url.PathEscape(artistID), url.QueryEscape(c.market))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create top-tracks request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("top-tracks request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("top-tracks endpoint returned status %d for artist %s", resp.StatusCode, artistID)
	}

	var body struct {
		Tracks []Track `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode top-tracks response: %w", err)
	}
	return body.Tracks, nil
}

// CheckArtist reports whether an artist ID exists in the provider's catalog.
// Any non-200 answer counts as "does not exist".
func (c *Client) CheckArtist(ctx context.Context, token, artistID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/artists/%s", c.baseURL, url.PathEscape(artistID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create artist lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("artist lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
