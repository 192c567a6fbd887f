package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		Port:               "8080",
		DBPath:             "./curator.db",
		CacheTTL:           600,
		CacheSweepInterval: 300,
		CacheMaxSize:       1000,
		WorkerCount:        2,
		SchedulerInterval:  300,
		APIAccessKey:       "test-key",
		OpenRouterModel:    "test/model",
		GeneratorRetries:   2,
		Version:            "test-version",
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.CacheTTL != 600 {
		t.Errorf("Expected cache TTL 600, got %d", cfg.CacheTTL)
	}
	if cfg.CacheSweepInterval != 300 {
		t.Errorf("Expected sweep interval 300, got %d", cfg.CacheSweepInterval)
	}
	if cfg.GeneratorRetries != 2 {
		t.Errorf("Expected generator retries 2, got %d", cfg.GeneratorRetries)
	}
	if cfg.OpenRouterModel != "test/model" {
		t.Errorf("Expected model 'test/model', got '%s'", cfg.OpenRouterModel)
	}
}

func TestGetPanicsWhenNotLoaded(t *testing.T) {
	saved := globalCfg
	globalCfg = nil
	defer func() {
		globalCfg = saved
		if r := recover(); r == nil {
			t.Error("Get should panic when configuration is not loaded")
		}
	}()
	Get()
}
