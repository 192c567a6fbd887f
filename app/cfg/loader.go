package cfg

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	// equivalent of cmp.Or(Version, "unknown"); cmp.Or needs Go 1.22+
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Application configuration
	Port     string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	DBPath   string `long:"db-path" env:"DB_PATH" default:"./curator.db" description:"Path to the sqlite database file"`
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Almaty)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	// Result cache
	CacheTTL           int `long:"cache-ttl" env:"CACHE_TTL" default:"600" description:"Recommendation cache TTL in seconds"`
	CacheSweepInterval int `long:"cache-sweep-interval" env:"CACHE_SWEEP_INTERVAL" default:"300" description:"Cache eviction sweep period in seconds"`
	CacheMaxSize       int `long:"cache-max-size" env:"CACHE_MAX_SIZE" default:"1000" description:"Soft cap on cached recommendation lists"`

	// Background scheduler
	WorkerCount       int `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for maintenance tasks"`
	SchedulerInterval int `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Scheduler interval in seconds"`

	// Admin API
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`

	// Access control
	AccessRequired bool `long:"access-required" env:"ACCESS_REQUIRED" description:"Require an activated access code session on recommendation endpoints"`

	// Generator
	OpenRouterURL    string `long:"openrouter-url" env:"OPENROUTER_URL" default:"https://openrouter.ai/api/v1" description:"OpenRouter-compatible API base URL"`
	OpenRouterKey    string `long:"openrouter-key" env:"OPENROUTER_API_KEY" description:"OpenRouter API key"`
	OpenRouterModel  string `long:"openrouter-model" env:"OPENROUTER_MODEL" default:"tngtech/deepseek-r1t2-chimera:free" description:"Model used for curation"`
	GeneratorTimeout int    `long:"generator-timeout" env:"GENERATOR_TIMEOUT" default:"60" description:"Per-attempt generator timeout in seconds"`
	GeneratorRetries int    `long:"generator-retries" env:"GENERATOR_RETRIES" default:"2" description:"Generator retries after the first attempt"`

	// External catalogs
	GoogleBooksKey      string `long:"google-books-key" env:"GOOGLE_BOOKS_API_KEY" description:"Google Books API key (optional)"`
	TMDBKey             string `long:"tmdb-key" env:"TMDB_API_KEY" description:"TMDB API key"`
	SpotifyClientID     string `long:"spotify-client-id" env:"SPOTIFY_CLIENT_ID" description:"Spotify client ID"`
	SpotifyClientSecret string `long:"spotify-client-secret" env:"SPOTIFY_CLIENT_SECRET" description:"Spotify client secret"`

	// Application metadata
	AppURL string `long:"app-url" env:"APP_URL" default:"http://localhost:8080" description:"Public URL of this service, sent as referer to the generator API"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:                raw.Port,
		DBPath:              raw.DBPath,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
		CacheTTL:            raw.CacheTTL,
		CacheSweepInterval:  raw.CacheSweepInterval,
		CacheMaxSize:        raw.CacheMaxSize,
		WorkerCount:         raw.WorkerCount,
		SchedulerInterval:   raw.SchedulerInterval,
		APIAccessKey:        raw.APIAccessKey,
		AccessRequired:      raw.AccessRequired,
		OpenRouterURL:       raw.OpenRouterURL,
		OpenRouterKey:       raw.OpenRouterKey,
		OpenRouterModel:     raw.OpenRouterModel,
		GeneratorTimeout:    raw.GeneratorTimeout,
		GeneratorRetries:    raw.GeneratorRetries,
		GoogleBooksKey:      raw.GoogleBooksKey,
		TMDBKey:             raw.TMDBKey,
		SpotifyClientID:     raw.SpotifyClientID,
		SpotifyClientSecret: raw.SpotifyClientSecret,
		AppURL:              raw.AppURL,
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
