package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dkenzhe/curator/app/catalog"
	"github.com/dkenzhe/curator/app/filters"
)

type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string, expectJSON bool) (string, error) {
	g.calls++
	return g.response, g.err
}

type stubBookCatalog struct {
	items []catalog.Item
}

func (s *stubBookCatalog) Search(ctx context.Context, genre string, era string, startIndex int) []catalog.Item {
	return s.items
}

func testBooks(n int) []catalog.Item {
	items := make([]catalog.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, catalog.Item{
			ID:          fmt.Sprintf("b%d", i+1),
			Title:       fmt.Sprintf("Book %d", i+1),
			Creator:     "Author",
			Description: fmt.Sprintf("Description %d", i+1),
		})
	}
	return items
}

func newBooksPipeline(generator Generator, items []catalog.Item) *Pipeline {
	strategy := NewBooksStrategy(&stubBookCatalog{items: items})
	strategy.randInt = func(int) int { return 0 }
	return NewPipeline(generator, strategy)
}

func TestPipelineCuratesSelections(t *testing.T) {
	generator := &stubGenerator{response: `[{"id": "b2", "why": "Perfect match"}, {"id": "b1", "why": "Close second"}]`}
	pipeline := newBooksPipeline(generator, testBooks(3))

	result, err := pipeline.Run(context.Background(), KindBooks, filters.CanonicalFilters{}, "en")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Provenance != ProvenanceAI {
		t.Errorf("expected ai provenance, got %q", result.Provenance)
	}
	if result.NothingFound {
		t.Error("unexpected nothing-found flag")
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	// Generator ordering is preserved
	if result.Records[0].ID != "b2" || result.Records[1].ID != "b1" {
		t.Errorf("unexpected order: %q, %q", result.Records[0].ID, result.Records[1].ID)
	}
	if result.Records[0].Why != "Perfect match" {
		t.Errorf("unexpected why: %q", result.Records[0].Why)
	}
}

func TestPipelineNothingFound(t *testing.T) {
	generator := &stubGenerator{response: `[]`}
	pipeline := newBooksPipeline(generator, nil)

	result, err := pipeline.Run(context.Background(), KindBooks, filters.CanonicalFilters{}, "en")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !result.NothingFound {
		t.Error("expected nothing-found result")
	}
	if generator.calls != 0 {
		t.Errorf("generator should not be called without candidates, got %d calls", generator.calls)
	}
}

func TestPipelineFallbackOnGeneratorError(t *testing.T) {
	generator := &stubGenerator{err: errors.New("upstream unavailable")}
	pipeline := newBooksPipeline(generator, testBooks(7))

	result, err := pipeline.Run(context.Background(), KindBooks, filters.CanonicalFilters{}, "ru")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Provenance != ProvenanceFallback {
		t.Errorf("expected fallback provenance, got %q", result.Provenance)
	}
	if len(result.Records) != 5 {
		t.Fatalf("expected 5 fallback records, got %d", len(result.Records))
	}
	if result.Records[0].Why != "Description 1" {
		t.Errorf("fallback should reuse candidate description, got %q", result.Records[0].Why)
	}
}

func TestPipelineFallbackOnUnparseableResponse(t *testing.T) {
	generator := &stubGenerator{response: "I could not produce recommendations this time."}
	pipeline := newBooksPipeline(generator, testBooks(3))

	result, err := pipeline.Run(context.Background(), KindBooks, filters.CanonicalFilters{}, "en")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Provenance != ProvenanceFallback {
		t.Errorf("expected fallback provenance, got %q", result.Provenance)
	}
	if len(result.Records) != 3 {
		t.Errorf("expected 3 fallback records, got %d", len(result.Records))
	}
}

func TestPipelineExtractsArrayFromProse(t *testing.T) {
	generator := &stubGenerator{response: `Here are my picks: [{"id": "b1", "why": "Great pacing"}] — enjoy!`}
	pipeline := newBooksPipeline(generator, testBooks(3))

	result, err := pipeline.Run(context.Background(), KindBooks, filters.CanonicalFilters{}, "en")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Provenance != ProvenanceAI {
		t.Errorf("expected ai provenance, got %q", result.Provenance)
	}
	if len(result.Records) != 1 || result.Records[0].ID != "b1" {
		t.Fatalf("unexpected records: %+v", result.Records)
	}
}

func TestPipelineFallbackOnEmptySelection(t *testing.T) {
	generator := &stubGenerator{response: `[]`}
	pipeline := newBooksPipeline(generator, testBooks(2))

	result, err := pipeline.Run(context.Background(), KindBooks, filters.CanonicalFilters{}, "en")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Provenance != ProvenanceFallback {
		t.Errorf("expected fallback provenance, got %q", result.Provenance)
	}
}

func TestPipelineSkipsUnknownIDs(t *testing.T) {
	generator := &stubGenerator{response: `[{"id": "ghost", "why": "x"}, {"id": "b1", "why": "Real"}]`}
	pipeline := newBooksPipeline(generator, testBooks(2))

	result, err := pipeline.Run(context.Background(), KindBooks, filters.CanonicalFilters{}, "en")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Records) != 1 || result.Records[0].ID != "b1" {
		t.Fatalf("expected only the matched record, got %+v", result.Records)
	}
}

func TestPipelineFallbackWhenNoSelectionMatches(t *testing.T) {
	generator := &stubGenerator{response: `[{"id": "ghost-1", "why": "x"}, {"id": "ghost-2", "why": "y"}]`}
	pipeline := newBooksPipeline(generator, testBooks(2))

	result, err := pipeline.Run(context.Background(), KindBooks, filters.CanonicalFilters{}, "en")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Provenance != ProvenanceFallback {
		t.Errorf("expected fallback provenance, got %q", result.Provenance)
	}
	if len(result.Records) != 2 {
		t.Errorf("expected 2 fallback records, got %d", len(result.Records))
	}
}

func TestPipelineCapsRecords(t *testing.T) {
	response := `[{"id":"b1","why":"a"},{"id":"b2","why":"b"},{"id":"b3","why":"c"},{"id":"b4","why":"d"},{"id":"b5","why":"e"},{"id":"b6","why":"f"},{"id":"b7","why":"g"}]`
	generator := &stubGenerator{response: response}
	pipeline := newBooksPipeline(generator, testBooks(7))

	result, err := pipeline.Run(context.Background(), KindBooks, filters.CanonicalFilters{}, "en")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Records) != 5 {
		t.Errorf("expected 5 records, got %d", len(result.Records))
	}
}

func TestPipelineUnknownKind(t *testing.T) {
	pipeline := newBooksPipeline(&stubGenerator{}, testBooks(1))

	_, err := pipeline.Run(context.Background(), KindMovies, filters.CanonicalFilters{}, "en")
	if err == nil {
		t.Error("expected error for unregistered kind")
	}
}

func TestExtractArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare array", `[{"id":"1"}]`, `[{"id":"1"}]`, true},
		{"prose around", `sure: [{"id":"1"}] done`, `[{"id":"1"}]`, true},
		{"nested arrays", `[[1,2],[3]] trailing`, `[[1,2],[3]]`, true},
		{"bracket inside string", `[{"why":"see [1]"}]`, `[{"why":"see [1]"}]`, true},
		{"no array", `nothing here`, "", false},
		{"unclosed", `[{"id":"1"}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractArray(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("extractArray(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}
