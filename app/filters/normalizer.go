package filters

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yml
var vocabularyYML []byte

// Normalizer maps multi-locale filter labels onto the canonical vocabulary.
// Normalization is total: an unknown value passes through as lower(trim(v))
// so a request never fails on an unrecognized label.
type Normalizer struct {
	facets map[string]string
	values map[string]string
	epochs map[string]YearRange
}

func NewNormalizer() (*Normalizer, error) {
	var vocab vocabulary
	if err := yaml.Unmarshal(vocabularyYML, &vocab); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if err := validateVocabulary(&vocab); err != nil {
		return nil, fmt.Errorf("invalid vocabulary: %w", err)
	}

	n := &Normalizer{
		facets: make(map[string]string),
		values: make(map[string]string),
		epochs: vocab.Epochs,
	}

	for facet, labels := range vocab.Facets {
		for _, label := range labels {
			n.facets[lookupKey(label)] = facet
		}
	}
	for token, labels := range vocab.Values {
		// Identity mapping keeps already-canonical input stable
		n.values[lookupKey(token)] = token
		for _, label := range labels {
			n.values[lookupKey(label)] = token
		}
	}

	return n, nil
}

// Facet resolves a user-facing facet label to its canonical facet name.
func (n *Normalizer) Facet(label string) (string, bool) {
	facet, ok := n.facets[lookupKey(label)]
	return facet, ok
}

// Value resolves a raw filter value to its canonical token. Unknown values
// return lower(trim(v)) unchanged.
func (n *Normalizer) Value(raw string) string {
	key := lookupKey(raw)
	if token, ok := n.values[key]; ok {
		return token
	}
	return key
}

// EpochRange returns the release-year window for a canonical epoch token.
func (n *Normalizer) EpochRange(token string) (YearRange, bool) {
	r, ok := n.epochs[token]
	return r, ok
}

// NormalizeSet normalizes a whole user filter set. Facet labels that are not
// part of the vocabulary are dropped; values always normalize.
func (n *Normalizer) NormalizeSet(raw map[string]string) CanonicalFilters {
	cf := CanonicalFilters{Facets: make(map[string]string)}

	for label, value := range raw {
		facet, ok := n.Facet(label)
		if !ok {
			continue
		}
		token := n.Value(value)
		if token == "" {
			continue
		}
		cf.Facets[facet] = token

		if facet == FacetEpoch {
			if r, ok := n.EpochRange(token); ok {
				years := r
				cf.Years = &years
			}
		}
	}

	return cf
}

// Fingerprint produces a stable serialization of a canonical filter set,
// used as the cache key component.
func (cf CanonicalFilters) Fingerprint() string {
	facets := make([]string, 0, len(cf.Facets))
	for facet := range cf.Facets {
		facets = append(facets, facet)
	}
	sort.Strings(facets)

	parts := make([]string, 0, len(facets))
	for _, facet := range facets {
		parts = append(parts, facet+"="+cf.Facets[facet])
	}
	return strings.Join(parts, ";")
}

func validateVocabulary(vocab *vocabulary) error {
	if len(vocab.Facets) == 0 {
		return fmt.Errorf("no facets defined")
	}
	if len(vocab.Values) == 0 {
		return fmt.Errorf("no values defined")
	}
	for token, labels := range vocab.Values {
		if strings.TrimSpace(token) == "" {
			return fmt.Errorf("empty canonical token")
		}
		if len(labels) == 0 {
			return fmt.Errorf("token '%s' has no labels", token)
		}
	}
	for token, r := range vocab.Epochs {
		if _, ok := vocab.Values[token]; !ok {
			return fmt.Errorf("epoch range for unknown token '%s'", token)
		}
		if r.Min <= 0 || r.Max < r.Min {
			return fmt.Errorf("invalid year range for '%s': %d-%d", token, r.Min, r.Max)
		}
	}
	return nil
}

func lookupKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
