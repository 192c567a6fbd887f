package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MusicClient searches the Spotify track catalog using the
// client-credentials flow. Tokens are fetched per search and not cached;
// search volume is low enough that the extra round trip is acceptable.
type MusicClient struct {
	authURL      string
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

func NewMusicClient(clientID, clientSecret string) *MusicClient {
	return &MusicClient{
		authURL:      "https://accounts.spotify.com/api/token",
		baseURL:      "https://api.spotify.com/v1",
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

type spotifyTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			DurationMS int `json:"duration_ms"`
			Album      struct {
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
			} `json:"album"`
		} `json:"items"`
	} `json:"tracks"`
}

// Search looks up tracks for a canonical genre token. The offset shifts the
// result window for variety between identical requests.
func (c *MusicClient) Search(ctx context.Context, genre string, offset int) []Item {
	token, err := c.accessToken(ctx)
	if err != nil {
		slog.Error("Spotify token request failed", "error", err)
		return nil
	}

	params := url.Values{}
	params.Set("q", "genre:"+genre)
	params.Set("type", "track")
	params.Set("limit", "12")
	params.Set("offset", fmt.Sprintf("%d", offset))

	var resp spotifySearchResponse
	headers := map[string]string{"Authorization": "Bearer " + token}
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/search?"+params.Encode(), headers, &resp); err != nil {
		slog.Error("Spotify search failed", "genre", genre, "error", err)
		return nil
	}

	items := make([]Item, 0, len(resp.Tracks.Items))
	for _, t := range resp.Tracks.Items {
		artists := make([]string, 0, len(t.Artists))
		for _, a := range t.Artists {
			artists = append(artists, a.Name)
		}
		image := ""
		if len(t.Album.Images) > 0 {
			image = t.Album.Images[0].URL
		}
		items = append(items, Item{
			ID:       t.ID,
			Title:    t.Name,
			Creator:  strings.Join(artists, ", "),
			ImageURL: image,
			Duration: formatDuration(t.DurationMS),
		})
	}

	slog.Debug("Spotify search completed", "genre", genre, "results", len(items))
	return items
}

func (c *MusicClient) accessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL,
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var tokenResp spotifyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}

	return tokenResp.AccessToken, nil
}

func formatDuration(ms int) string {
	if ms <= 0 {
		return ""
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
