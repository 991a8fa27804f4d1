// Package config loads serve-mode configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the serve-mode settings.
type Config struct {
	ListenAddr    string
	DatabaseURL   string
	AnalyzerURL   string
	AnalyzerKey   string
	Workers       int
	CrawlMaxPages int
	RunTimeout    time.Duration
}

// Load reads configuration from the environment, after best-effort loading
// a local .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr:    getenv("PROWL_LISTEN", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AnalyzerURL:   os.Getenv("PROWL_ANALYZER_URL"),
		AnalyzerKey:   os.Getenv("PROWL_ANALYZER_KEY"),
		Workers:       getenvInt("PROWL_WORKERS", 10),
		CrawlMaxPages: getenvInt("PROWL_CRAWL_MAX_PAGES", 50),
		RunTimeout:    getenvDuration("PROWL_RUN_TIMEOUT", 15*time.Minute),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
