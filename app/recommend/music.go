package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/dkenzhe/curator/app/catalog"
	"github.com/dkenzhe/curator/app/filters"
)

type MusicCatalog interface {
	Search(ctx context.Context, genre string, offset int) []catalog.Item
}

// MusicStrategy curates track recommendations from a streaming catalog.
type MusicStrategy struct {
	music   MusicCatalog
	randInt func(n int) int
}

func NewMusicStrategy(music MusicCatalog) *MusicStrategy {
	return &MusicStrategy{music: music, randInt: rand.Intn}
}

func (s *MusicStrategy) Kind() Kind {
	return KindMusic
}

func (s *MusicStrategy) Search(ctx context.Context, cf filters.CanonicalFilters) []Candidate {
	genre := cf.Value(filters.FacetGenre)
	if genre == "" {
		genre = "pop"
	}

	items := s.music.Search(ctx, genre, s.randInt(20))
	return candidatesFromItems(items)
}

func (s *MusicStrategy) BuildPrompt(cf filters.CanonicalFilters, candidates []Candidate, locale string) string {
	vibe := cf.Value(filters.FacetMood)
	if vibe == "" {
		vibe = "chill"
	}
	targetLang := filters.LocaleName(locale)

	type promptTrack struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Artist string `json:"artist"`
	}
	tracks := make([]promptTrack, 0, promptCandidateLimit)
	for _, c := range candidates {
		if len(tracks) == promptCandidateLimit {
			break
		}
		tracks = append(tracks, promptTrack{
			ID:     c.ID,
			Title:  c.Title,
			Artist: c.Creator,
		})
	}
	payload, _ := json.Marshal(tracks)

	return fmt.Sprintf(`Task: You are a music curator. Select exactly 5 tracks for a "%s" vibe.

Tracks to choose from:
%s

CRITICAL RULES:
1. Return ONLY a valid JSON array
2. Each item MUST have: {"id": "string", "why": "string"}
3. The "why" must be ONE short sentence (max 100 characters) about why it fits "%s"
4. Write "why" in %s language
5. NO markdown, NO code blocks

Example:
[
  {"id": "xyz", "why": "Идеальная энергия для тренировки"},
  {"id": "abc", "why": "Расслабляющая мелодия для отдыха"}
]`, vibe, payload, vibe, targetLang)
}

func (s *MusicStrategy) FormatResult(c Candidate, why string) Recommendation {
	if why == "" {
		why = "Perfect track"
	}
	return Recommendation{
		ID:       c.ID,
		Title:    c.Title,
		Artist:   c.Creator,
		Image:    c.ImageURL,
		Duration: c.Duration,
		Why:      why,
	}
}

// Fallback does not reuse track descriptions: the streaming catalog does not
// provide any, so every entry carries the localized placeholder.
func (s *MusicStrategy) Fallback(candidates []Candidate, locale string) []Recommendation {
	recommendations := make([]Recommendation, 0, resultLimit)
	for _, c := range candidates {
		if len(recommendations) == resultLimit {
			break
		}
		recommendations = append(recommendations, Recommendation{
			ID:       c.ID,
			Title:    c.Title,
			Artist:   c.Creator,
			Image:    c.ImageURL,
			Duration: c.Duration,
			Why:      filters.FallbackText("music", locale),
		})
	}
	return recommendations
}

var _ Strategy = (*MusicStrategy)(nil)
var _ MusicCatalog = (*catalog.MusicClient)(nil)
