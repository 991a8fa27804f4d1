package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PROWL_LISTEN", "DATABASE_URL", "PROWL_ANALYZER_URL", "PROWL_ANALYZER_KEY",
		"PROWL_WORKERS", "PROWL_CRAWL_MAX_PAGES", "PROWL_RUN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.Workers != 10 {
		t.Errorf("Workers = %d, want 10", cfg.Workers)
	}
	if cfg.CrawlMaxPages != 50 {
		t.Errorf("CrawlMaxPages = %d, want 50", cfg.CrawlMaxPages)
	}
	if cfg.RunTimeout != 15*time.Minute {
		t.Errorf("RunTimeout = %s, want 15m", cfg.RunTimeout)
	}
	if cfg.DatabaseURL != "" || cfg.AnalyzerURL != "" {
		t.Error("unset URLs must stay empty")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PROWL_LISTEN", ":9999")
	t.Setenv("DATABASE_URL", "postgres://localhost/prowl")
	t.Setenv("PROWL_WORKERS", "25")
	t.Setenv("PROWL_RUN_TIMEOUT", "90s")

	cfg := Load()

	if cfg.ListenAddr != ":9999" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DatabaseURL != "postgres://localhost/prowl" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.Workers != 25 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.RunTimeout != 90*time.Second {
		t.Errorf("RunTimeout = %s", cfg.RunTimeout)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PROWL_WORKERS", "lots")
	t.Setenv("PROWL_RUN_TIMEOUT", "soon")

	cfg := Load()

	if cfg.Workers != 10 {
		t.Errorf("Workers = %d, want the default for malformed input", cfg.Workers)
	}
	if cfg.RunTimeout != 15*time.Minute {
		t.Errorf("RunTimeout = %s, want the default for malformed input", cfg.RunTimeout)
	}
}
