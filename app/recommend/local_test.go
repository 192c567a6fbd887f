package recommend

import (
	"testing"

	"github.com/dkenzhe/curator/app/database"
	"github.com/dkenzhe/curator/app/filters"
)

type stubContentRepo struct {
	contentType string
	excludeIDs  []int64
	items       []database.ContentItem
	err         error
}

func (s *stubContentRepo) Search(kind string, cf filters.CanonicalFilters, excludeIDs []int64) ([]database.ContentItem, error) {
	s.contentType = kind
	s.excludeIDs = excludeIDs
	return s.items, s.err
}

func (s *stubContentRepo) GetContentCount() (int, error) {
	return len(s.items), nil
}

func (s *stubContentRepo) GetContentCountByType() (map[string]int, error) {
	return nil, nil
}

func TestLocalCatalogRecommend(t *testing.T) {
	repo := &stubContentRepo{items: []database.ContentItem{
		{
			ID: 42, Type: "movie", Title: "Heat", Creator: "Michael Mann",
			Genre: "thriller", Year: 1995, Rating: 8.3, ImageURL: "https://img/heat.jpg",
			Description: "Default", DescriptionRU: "Русское описание",
		},
	}}
	local := NewLocalCatalog(repo)

	result, err := local.Recommend(KindMovies, filters.CanonicalFilters{}, []int64{7, 9}, "ru")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}

	if repo.contentType != "movie" {
		t.Errorf("expected singular content type, got %q", repo.contentType)
	}
	if len(repo.excludeIDs) != 2 {
		t.Errorf("exclusions not passed through: %v", repo.excludeIDs)
	}
	if result.Provenance != ProvenanceLocal {
		t.Errorf("expected db provenance, got %q", result.Provenance)
	}
	if len(result.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(result.Records))
	}

	rec := result.Records[0]
	if rec.ID != "42" || rec.Title != "Heat" || rec.Genre != "thriller" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Why != "Русское описание" {
		t.Errorf("expected localized description, got %q", rec.Why)
	}
}

func TestLocalCatalogKindFields(t *testing.T) {
	repo := &stubContentRepo{items: []database.ContentItem{
		{ID: 1, Title: "Track", Creator: "Artist", Duration: "3:05"},
	}}
	local := NewLocalCatalog(repo)

	result, err := local.Recommend(KindMusic, filters.CanonicalFilters{}, nil, "en")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if repo.contentType != "music" {
		t.Errorf("expected music content type, got %q", repo.contentType)
	}

	rec := result.Records[0]
	if rec.Artist != "Artist" || rec.Duration != "3:05" {
		t.Errorf("unexpected music fields: %+v", rec)
	}
	if rec.Author != "" {
		t.Errorf("music records should not carry an author, got %q", rec.Author)
	}
}

func TestLocalCatalogDescriptionFallbackChain(t *testing.T) {
	repo := &stubContentRepo{items: []database.ContentItem{
		{ID: 1, Title: "Book", Description: "Default only"},
	}}
	local := NewLocalCatalog(repo)

	result, err := local.Recommend(KindBooks, filters.CanonicalFilters{}, nil, "kk")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if result.Records[0].Why != "Default only" {
		t.Errorf("expected default description, got %q", result.Records[0].Why)
	}

	repo.items = []database.ContentItem{{ID: 2, Title: "Bare"}}
	result, _ = local.Recommend(KindBooks, filters.CanonicalFilters{}, nil, "en")
	if result.Records[0].Why != "Great choice!" {
		t.Errorf("expected placeholder description, got %q", result.Records[0].Why)
	}
}

func TestLocalCatalogNothingFound(t *testing.T) {
	local := NewLocalCatalog(&stubContentRepo{})

	result, err := local.Recommend(KindBooks, filters.CanonicalFilters{}, nil, "en")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if !result.NothingFound {
		t.Error("expected nothing-found result")
	}
}
