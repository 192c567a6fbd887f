package catalog

// Item is a normalized record returned by an external catalog search.
// Adapters never fail a request: network or parse errors are logged and
// degrade to an empty list, so the core treats "no candidates" uniformly
// regardless of cause.
type Item struct {
	ID          string
	Title       string
	Creator     string // author for books, artist for music
	ImageURL    string
	Year        int
	Rating      float64
	Duration    string
	Description string
}
