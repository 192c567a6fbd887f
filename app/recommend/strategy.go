package recommend

import (
	"context"

	"github.com/dkenzhe/curator/app/catalog"
	"github.com/dkenzhe/curator/app/filters"
)

// Strategy binds one content kind to its catalog search, curation prompt and
// result shaping. The pipeline stays kind-agnostic; everything kind-specific
// lives behind this interface.
type Strategy interface {
	Kind() Kind

	// Search queries the external catalog for candidates. Catalog failures
	// surface as an empty slice, never as an error.
	Search(ctx context.Context, cf filters.CanonicalFilters) []Candidate

	// BuildPrompt renders the curation prompt for the generator. The locale
	// controls the language of the "why" sentences, not of the candidates.
	BuildPrompt(cf filters.CanonicalFilters, candidates []Candidate, locale string) string

	// FormatResult shapes one curated candidate. An empty why falls back to
	// the candidate's own description where the kind has one.
	FormatResult(c Candidate, why string) Recommendation

	// Fallback produces deterministic recommendations when curation is
	// unavailable.
	Fallback(candidates []Candidate, locale string) []Recommendation
}

const (
	// How many candidates are offered to the generator per prompt.
	promptCandidateLimit = 15
	// How many recommendations a response may carry.
	resultLimit = 5
	// Description lengths, in runes, for prompts and for fallback "why" text.
	promptDescriptionLimit = 200
	whyDescriptionLimit    = 150
)

func candidateFromItem(item catalog.Item) Candidate {
	return Candidate{
		ID:          item.ID,
		Title:       item.Title,
		Creator:     item.Creator,
		ImageURL:    item.ImageURL,
		Year:        item.Year,
		Rating:      item.Rating,
		Duration:    item.Duration,
		Description: item.Description,
	}
}

func candidatesFromItems(items []catalog.Item) []Candidate {
	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		candidates = append(candidates, candidateFromItem(item))
	}
	return candidates
}

// truncate cuts a string to at most limit runes. Slicing runes rather than
// bytes keeps Cyrillic descriptions from being cut mid-character.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
