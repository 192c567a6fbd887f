package recommend

// Kind identifies a recommendable content type. The set is closed; ForKind
// rejects anything else at request entry.
type Kind string

const (
	KindBooks  Kind = "books"
	KindMovies Kind = "movies"
	KindMusic  Kind = "music"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindBooks, KindMovies, KindMusic:
		return Kind(s), true
	}
	return "", false
}

// Candidate is a normalized content record returned by a catalog search,
// prior to curation. Owned by a single request, never persisted.
type Candidate struct {
	ID          string
	Title       string
	Creator     string // author for books, artist for music
	ImageURL    string
	Year        int
	Rating      float64
	Duration    string
	Description string
}

// Recommendation is a curated record returned to the caller. The shape is
// identical whether the "why" came from the generator or from the
// deterministic fallback.
type Recommendation struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Author   string  `json:"author,omitempty"`
	Artist   string  `json:"artist,omitempty"`
	Genre    string  `json:"genre,omitempty"`
	Year     int     `json:"year,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Image    string  `json:"image,omitempty"`
	Duration string  `json:"duration,omitempty"`
	Why      string  `json:"why"`
}

// Provenance records which path produced a result.
type Provenance string

const (
	ProvenanceAI       Provenance = "ai"
	ProvenanceFallback Provenance = "fallback"
	ProvenanceLocal    Provenance = "db"
)

// Result is the outcome of one pipeline run. NothingFound is a terminal
// outcome distinct from both success paths: candidates simply did not exist.
type Result struct {
	Records      []Recommendation
	Provenance   Provenance
	NothingFound bool
}
