package filters

// Canonical facet names. Every user-facing facet label resolves to one of
// these before it reaches a catalog search.
const (
	FacetGenre    = "genre"
	FacetEpoch    = "epoch"
	FacetMood     = "mood"
	FacetCriteria = "criteria"
)

// YearRange is a closed release-year interval resolved from an epoch token.
type YearRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// CanonicalFilters is a normalized filter set: canonical facet -> canonical
// value token, plus the year range when the epoch facet resolved to one.
type CanonicalFilters struct {
	Facets map[string]string
	Years  *YearRange
}

// Value returns the canonical token for a facet, or "" when absent.
func (cf CanonicalFilters) Value(facet string) string {
	return cf.Facets[facet]
}

type vocabulary struct {
	Facets map[string][]string  `yaml:"facets"`
	Values map[string][]string  `yaml:"values"`
	Epochs map[string]YearRange `yaml:"epochs"`
}
