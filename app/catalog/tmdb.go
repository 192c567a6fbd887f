package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// MoviesClient searches the TMDB discover API.
type MoviesClient struct {
	baseURL    string
	imageURL   string
	apiKey     string
	httpClient *http.Client
}

func NewMoviesClient(apiKey string) *MoviesClient {
	return &MoviesClient{
		baseURL:    "https://api.themoviedb.org/3",
		imageURL:   "https://image.tmdb.org/t/p/w500",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Canonical genre token -> TMDB genre ID.
var tmdbGenres = map[string]int{
	"action":      28,
	"adventure":   12,
	"animation":   16,
	"comedy":      35,
	"crime":       80,
	"documentary": 99,
	"drama":       18,
	"family":      10751,
	"fantasy":     14,
	"history":     36,
	"horror":      27,
	"mystery":     9648,
	"romance":     10749,
	"sci-fi":      878,
	"thriller":    53,
	"war":         10752,
	"western":     37,
}

// Canonical criteria token -> discover sort order.
var tmdbSort = map[string]string{
	"oscar":       "vote_average.desc",
	"blockbuster": "popularity.desc",
	"hidden_gem":  "vote_average.desc",
	"arthouse":    "vote_average.desc",
	"high_rated":  "vote_average.desc",
	"popular":     "popularity.desc",
}

type tmdbResponse struct {
	Results []struct {
		ID          int     `json:"id"`
		Title       string  `json:"title"`
		ReleaseDate string  `json:"release_date"`
		VoteAverage float64 `json:"vote_average"`
		PosterPath  string  `json:"poster_path"`
		Overview    string  `json:"overview"`
	} `json:"results"`
}

// Search discovers movies for a canonical genre token, an optional release
// year window and a criteria token that picks sort order and vote filters.
func (c *MoviesClient) Search(ctx context.Context, genre string, yearMin, yearMax int, criteria string) []Item {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", "en-US")
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	params.Set("page", "1")

	sortBy, ok := tmdbSort[criteria]
	if !ok {
		sortBy = "popularity.desc"
	}
	params.Set("sort_by", sortBy)

	if id, ok := tmdbGenres[genre]; ok {
		params.Set("with_genres", strconv.Itoa(id))
	}
	if yearMin > 0 && yearMax > 0 {
		params.Set("primary_release_date.gte", fmt.Sprintf("%d-01-01", yearMin))
		params.Set("primary_release_date.lte", fmt.Sprintf("%d-12-31", yearMax))
	}

	switch criteria {
	case "oscar":
		params.Set("vote_average.gte", "7.5")
		params.Set("vote_count.gte", "1000")
	case "hidden_gem":
		params.Set("vote_average.gte", "7.0")
		params.Set("vote_count.gte", "100")
		params.Set("popularity.lte", "50")
	}

	var resp tmdbResponse
	if err := getJSON(ctx, c.httpClient, c.baseURL+"/discover/movie?"+params.Encode(), nil, &resp); err != nil {
		slog.Error("TMDB search failed", "genre", genre, "criteria", criteria, "error", err)
		return nil
	}

	items := make([]Item, 0, len(resp.Results))
	for _, m := range resp.Results {
		year := 0
		if len(m.ReleaseDate) >= 4 {
			year, _ = strconv.Atoi(m.ReleaseDate[:4])
		}
		image := ""
		if m.PosterPath != "" {
			image = c.imageURL + m.PosterPath
		}
		items = append(items, Item{
			ID:          strconv.Itoa(m.ID),
			Title:       m.Title,
			Year:        year,
			Rating:      m.VoteAverage,
			ImageURL:    image,
			Description: m.Overview,
		})
	}

	slog.Debug("TMDB search completed", "genre", genre, "results", len(items))
	return items
}
