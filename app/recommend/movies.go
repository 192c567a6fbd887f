package recommend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkenzhe/curator/app/catalog"
	"github.com/dkenzhe/curator/app/filters"
)

type MovieCatalog interface {
	Search(ctx context.Context, genre string, yearMin, yearMax int, criteria string) []catalog.Item
}

// MoviesStrategy curates film recommendations from a movie catalog.
type MoviesStrategy struct {
	movies MovieCatalog
}

func NewMoviesStrategy(movies MovieCatalog) *MoviesStrategy {
	return &MoviesStrategy{movies: movies}
}

func (s *MoviesStrategy) Kind() Kind {
	return KindMovies
}

func (s *MoviesStrategy) Search(ctx context.Context, cf filters.CanonicalFilters) []Candidate {
	genre := cf.Value(filters.FacetGenre)
	criteria := cf.Value(filters.FacetCriteria)

	var yearMin, yearMax int
	if cf.Years != nil {
		yearMin, yearMax = cf.Years.Min, cf.Years.Max
	}

	items := s.movies.Search(ctx, genre, yearMin, yearMax, criteria)
	return candidatesFromItems(items)
}

func (s *MoviesStrategy) BuildPrompt(cf filters.CanonicalFilters, candidates []Candidate, locale string) string {
	criteria := cf.Value(filters.FacetCriteria)
	if criteria == "" {
		criteria = "popular"
	}
	targetLang := filters.LocaleName(locale)

	type promptMovie struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		Year     int     `json:"year"`
		Rating   float64 `json:"rating"`
		Overview string  `json:"overview"`
	}
	movies := make([]promptMovie, 0, promptCandidateLimit)
	for _, c := range candidates {
		if len(movies) == promptCandidateLimit {
			break
		}
		movies = append(movies, promptMovie{
			ID:       c.ID,
			Title:    c.Title,
			Year:     c.Year,
			Rating:   c.Rating,
			Overview: truncate(c.Description, promptDescriptionLimit),
		})
	}
	payload, _ := json.Marshal(movies)

	return fmt.Sprintf(`Task: You are a professional film critic. Select exactly 5 movies that match "%s" criteria.

Movies to choose from:
%s

CRITICAL RULES:
1. Return ONLY a valid JSON array
2. Each item MUST have: {"id": "string", "why": "string"}
3. The "why" must be ONE sentence (max 120 characters) explaining why this film matches "%s"
4. Write "why" in %s language
5. NO markdown, NO code blocks - just JSON

Example format:
[
  {"id": "550", "why": "Культовый фильм, изменивший кинематограф"},
  {"id": "680", "why": "Мощная драма о человеческих ценностях"}
]`, criteria, payload, criteria, targetLang)
}

func (s *MoviesStrategy) FormatResult(c Candidate, why string) Recommendation {
	if why == "" {
		why = truncate(c.Description, whyDescriptionLimit)
	}
	if why == "" {
		why = "Highly rated"
	}
	return Recommendation{
		ID:     c.ID,
		Title:  c.Title,
		Year:   c.Year,
		Rating: c.Rating,
		Image:  c.ImageURL,
		Why:    why,
	}
}

func (s *MoviesStrategy) Fallback(candidates []Candidate, locale string) []Recommendation {
	recommendations := make([]Recommendation, 0, resultLimit)
	for _, c := range candidates {
		if len(recommendations) == resultLimit {
			break
		}
		why := truncate(c.Description, whyDescriptionLimit)
		if why == "" {
			why = filters.FallbackText("movies", locale)
		}
		recommendations = append(recommendations, Recommendation{
			ID:     c.ID,
			Title:  c.Title,
			Year:   c.Year,
			Rating: c.Rating,
			Image:  c.ImageURL,
			Why:    why,
		})
	}
	return recommendations
}

var _ Strategy = (*MoviesStrategy)(nil)
var _ MovieCatalog = (*catalog.MoviesClient)(nil)
