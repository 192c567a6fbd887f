package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dkenzhe/curator/app/filters"
)

// Generator produces curation output for a prompt. Implemented by the llm
// client; tests substitute a stub.
type Generator interface {
	Generate(ctx context.Context, prompt string, expectJSON bool) (string, error)
}

// Pipeline runs the full recommendation flow: catalog search, generator
// curation and result joining. Every generator failure degrades to the
// strategy's deterministic fallback; the caller always gets an answer when
// candidates exist.
type Pipeline struct {
	generator  Generator
	strategies map[Kind]Strategy
}

func NewPipeline(generator Generator, strategies ...Strategy) *Pipeline {
	byKind := make(map[Kind]Strategy, len(strategies))
	for _, s := range strategies {
		byKind[s.Kind()] = s
	}
	return &Pipeline{generator: generator, strategies: byKind}
}

// selection is one entry of the generator's response array.
type selection struct {
	ID  string `json:"id"`
	Why string `json:"why"`
}

func (p *Pipeline) Run(ctx context.Context, kind Kind, cf filters.CanonicalFilters, locale string) (Result, error) {
	strategy, ok := p.strategies[kind]
	if !ok {
		return Result{}, fmt.Errorf("no strategy registered for kind %q", kind)
	}

	candidates := strategy.Search(ctx, cf)
	if len(candidates) == 0 {
		slog.Debug("No candidates found", "kind", kind)
		return Result{NothingFound: true}, nil
	}
	slog.Debug("Candidates found", "kind", kind, "count", len(candidates))

	prompt := strategy.BuildPrompt(cf, candidates, locale)
	content, err := p.generator.Generate(ctx, prompt, true)
	if err != nil {
		slog.Warn("Generation failed, using fallback", "kind", kind, "error", err)
		return fallbackResult(strategy, candidates, locale), nil
	}

	selections, err := parseSelections(content)
	if err != nil {
		slog.Warn("Unparseable generator response, using fallback", "kind", kind, "error", err)
		return fallbackResult(strategy, candidates, locale), nil
	}
	if len(selections) == 0 {
		slog.Warn("Generator selected nothing, using fallback", "kind", kind)
		return fallbackResult(strategy, candidates, locale), nil
	}

	byID := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	records := make([]Recommendation, 0, resultLimit)
	for _, sel := range selections {
		if len(records) == resultLimit {
			break
		}
		candidate, ok := byID[sel.ID]
		if !ok {
			// The generator hallucinated an id outside the offered set
			continue
		}
		records = append(records, strategy.FormatResult(candidate, sel.Why))
	}
	if len(records) == 0 {
		slog.Warn("No selections matched offered candidates, using fallback", "kind", kind)
		return fallbackResult(strategy, candidates, locale), nil
	}

	slog.Debug("Curation complete", "kind", kind, "count", len(records))
	return Result{Records: records, Provenance: ProvenanceAI}, nil
}

func fallbackResult(strategy Strategy, candidates []Candidate, locale string) Result {
	return Result{
		Records:    strategy.Fallback(candidates, locale),
		Provenance: ProvenanceFallback,
	}
}

// parseSelections decodes the generator response, falling back to extracting
// the first balanced JSON array when the response carries prose around it.
func parseSelections(content string) ([]selection, error) {
	var selections []selection
	if err := json.Unmarshal([]byte(content), &selections); err == nil {
		return selections, nil
	}

	extracted, ok := extractArray(content)
	if !ok {
		return nil, fmt.Errorf("no JSON array in response")
	}
	if err := json.Unmarshal([]byte(extracted), &selections); err != nil {
		return nil, fmt.Errorf("failed to decode extracted array: %w", err)
	}
	return selections, nil
}

// extractArray returns the first balanced-bracket array in s. Brackets inside
// JSON strings are ignored.
func extractArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
