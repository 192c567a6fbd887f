package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// BooksClient searches the Google Books volumes API.
type BooksClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewBooksClient(apiKey string) *BooksClient {
	return &BooksClient{
		baseURL:    "https://www.googleapis.com/books/v1",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type booksResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title       string   `json:"title"`
			Authors     []string `json:"authors"`
			Description string   `json:"description"`
			ImageLinks  struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Search issues a subject query built from the translated genre and era
// keywords. startIndex shifts the result window so repeated identical
// requests do not always surface the same volumes.
func (c *BooksClient) Search(ctx context.Context, genre, era string, startIndex int) []Item {
	query := "subject:" + genre
	if era != "" {
		query += " " + era
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("startIndex", fmt.Sprintf("%d", startIndex))
	params.Set("maxResults", "30")
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var resp booksResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/volumes?"+params.Encode(), nil, &resp); err != nil {
		slog.Error("Google Books search failed", "genre", genre, "error", err)
		return nil
	}

	items := make([]Item, 0, len(resp.Items))
	for _, v := range resp.Items {
		if v.VolumeInfo.Title == "" {
			continue
		}
		authors := "Unknown Author"
		if len(v.VolumeInfo.Authors) > 0 {
			authors = strings.Join(v.VolumeInfo.Authors, ", ")
		}
		items = append(items, Item{
			ID:          v.ID,
			Title:       v.VolumeInfo.Title,
			Creator:     authors,
			ImageURL:    strings.Replace(v.VolumeInfo.ImageLinks.Thumbnail, "http:", "https:", 1),
			Description: v.VolumeInfo.Description,
		})
	}

	slog.Debug("Google Books search completed", "genre", genre, "results", len(items))
	return items
}

// getJSON performs a GET request and decodes the JSON body. Shared by all
// catalog adapters.
func getJSON(ctx context.Context, client *http.Client, rawURL string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
