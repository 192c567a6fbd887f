package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/dkenzhe/curator/app/catalog"
	"github.com/dkenzhe/curator/app/filters"
)

type BookCatalog interface {
	Search(ctx context.Context, genre string, era string, startIndex int) []catalog.Item
}

// BooksStrategy curates book recommendations from a volume catalog.
type BooksStrategy struct {
	books   BookCatalog
	randInt func(n int) int
}

func NewBooksStrategy(books BookCatalog) *BooksStrategy {
	return &BooksStrategy{books: books, randInt: rand.Intn}
}

func (s *BooksStrategy) Kind() Kind {
	return KindBooks
}

// Search pages into the catalog at a random offset so repeated identical
// requests do not surface the same shelf every time.
func (s *BooksStrategy) Search(ctx context.Context, cf filters.CanonicalFilters) []Candidate {
	genre := cf.Value(filters.FacetGenre)
	if genre == "" {
		genre = "fiction"
	}
	era := strings.ReplaceAll(cf.Value(filters.FacetEpoch), "_", " ")

	items := s.books.Search(ctx, genre, era, s.randInt(10))
	return candidatesFromItems(items)
}

func (s *BooksStrategy) BuildPrompt(cf filters.CanonicalFilters, candidates []Candidate, locale string) string {
	mood := cf.Value(filters.FacetMood)
	if mood == "" {
		mood = "interesting"
	}
	targetLang := filters.LocaleName(locale)

	type promptBook struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	books := make([]promptBook, 0, promptCandidateLimit)
	for _, c := range candidates {
		if len(books) == promptCandidateLimit {
			break
		}
		books = append(books, promptBook{
			ID:          c.ID,
			Title:       c.Title,
			Description: truncate(c.Description, promptDescriptionLimit),
		})
	}
	payload, _ := json.Marshal(books)

	return fmt.Sprintf(`Task: You are a professional book curator. Select exactly 5 books for someone seeking a "%s" reading experience.

Books to choose from:
%s

CRITICAL RULES:
1. Return ONLY a valid JSON array, nothing else
2. Each item MUST have this exact structure: {"id": "string", "why": "string"}
3. The "why" field must be ONE sentence (max 120 characters) explaining why this book perfectly matches the "%s" atmosphere
4. Write "why" in %s language
5. Select books that genuinely fit the requested mood
6. NO markdown, NO code blocks, NO explanations - just pure JSON

Example format:
[
  {"id": "abc123", "why": "Захватывающий триллер с неожиданной развязкой"},
  {"id": "def456", "why": "Философская притча о смысле жизни"}
]`, mood, payload, mood, targetLang)
}

func (s *BooksStrategy) FormatResult(c Candidate, why string) Recommendation {
	if why == "" {
		why = truncate(c.Description, whyDescriptionLimit)
	}
	if why == "" {
		why = "Great choice"
	}
	return Recommendation{
		ID:     c.ID,
		Title:  c.Title,
		Author: c.Creator,
		Image:  c.ImageURL,
		Why:    why,
	}
}

func (s *BooksStrategy) Fallback(candidates []Candidate, locale string) []Recommendation {
	recommendations := make([]Recommendation, 0, resultLimit)
	for _, c := range candidates {
		if len(recommendations) == resultLimit {
			break
		}
		why := truncate(c.Description, whyDescriptionLimit)
		if why == "" {
			why = filters.FallbackText("books", locale)
		}
		recommendations = append(recommendations, Recommendation{
			ID:     c.ID,
			Title:  c.Title,
			Author: c.Creator,
			Image:  c.ImageURL,
			Why:    why,
		})
	}
	return recommendations
}

var _ Strategy = (*BooksStrategy)(nil)
var _ BookCatalog = (*catalog.BooksClient)(nil)
