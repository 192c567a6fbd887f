package cfg

type Cfg struct {
	// Application configuration
	Port     string
	DBPath   string
	Timezone string
	Debug    bool
	Version  string

	// Result cache
	CacheTTL           int
	CacheSweepInterval int
	CacheMaxSize       int

	// Background scheduler
	WorkerCount       int
	SchedulerInterval int

	// Admin API
	APIAccessKey string

	// Access control
	AccessRequired bool

	// Generator (OpenRouter-compatible chat completions)
	OpenRouterURL    string
	OpenRouterKey    string
	OpenRouterModel  string
	GeneratorTimeout int
	GeneratorRetries int

	// External catalogs
	GoogleBooksKey      string
	TMDBKey             string
	SpotifyClientID     string
	SpotifyClientSecret string

	// Application metadata
	AppURL string
}
