package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Place-search (geocoding) configuration.
	GeocodingBaseURL   string
	GeocodingLanguage  string
	GeocodingTimeout   time.Duration
	GeocodingCacheSize int

	// Hourly forecast configuration.
	ForecastBaseURL string
	ForecastTimeout time.Duration
	PastDays        int
	ForecastDays    int

	// Comparison schedule.
	HorizonHours int

	// Autosuggest.
	SuggestLimit    int
	SuggestDebounce time.Duration

	// Recent-selections store.
	RecentDBPath     string
	RecentMaxEntries int

	// Background refresh of the most recent place. Zero disables it.
	RefreshInterval time.Duration
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("INFO: could not load .env file: %v", err)
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geocodingTimeout, err := parseDuration("GEOCODING_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	forecastTimeout, err := parseDuration("FORECAST_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	suggestDebounce, err := parseDuration("SUGGEST_DEBOUNCE", "180ms")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseOptionalDuration("REFRESH_INTERVAL", "0")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GeocodingBaseURL:   envOrDefault("GEOCODING_BASE_URL", "https://geocoding-api.open-meteo.com/v1/search"),
		GeocodingLanguage:  envOrDefault("GEOCODING_LANGUAGE", "en"),
		GeocodingTimeout:   geocodingTimeout,
		GeocodingCacheSize: envInt("GEOCODING_CACHE_SIZE", 1000),

		ForecastBaseURL: envOrDefault("FORECAST_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		ForecastTimeout: forecastTimeout,
		PastDays:        envInt("PAST_DAYS", 1),
		ForecastDays:    envInt("FORECAST_DAYS", 7),

		HorizonHours: envInt("HORIZON_HOURS", 168),

		SuggestLimit:    envInt("SUGGEST_LIMIT", 5),
		SuggestDebounce: suggestDebounce,

		RecentDBPath:     envOrDefault("RECENT_DB_PATH", "recent.db"),
		RecentMaxEntries: envInt("RECENT_MAX_ENTRIES", 10),

		RefreshInterval: refreshInterval,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if c.GeocodingBaseURL == "" {
		return errors.New("GEOCODING_BASE_URL is required")
	}
	if c.ForecastBaseURL == "" {
		return errors.New("FORECAST_BASE_URL is required")
	}
	if c.GeocodingCacheSize <= 0 {
		return errors.New("GEOCODING_CACHE_SIZE must be positive")
	}
	if c.PastDays < 1 {
		return errors.New("PAST_DAYS must be at least 1 so every hour has a same-hour-yesterday counterpart")
	}
	if c.ForecastDays < 1 || c.ForecastDays > 16 {
		return errors.New("FORECAST_DAYS must be between 1 and 16")
	}
	if c.HorizonHours <= 0 {
		return errors.New("HORIZON_HOURS must be positive")
	}
	if c.HorizonHours > c.ForecastDays*24 {
		return fmt.Errorf("HORIZON_HOURS (%d) exceeds the fetched window of %d forecast days", c.HorizonHours, c.ForecastDays)
	}
	if c.SuggestLimit <= 0 {
		return errors.New("SUGGEST_LIMIT must be positive")
	}
	if c.RecentMaxEntries <= 0 {
		return errors.New("RECENT_MAX_ENTRIES must be positive")
	}
	if c.RefreshInterval < 0 {
		return errors.New("REFRESH_INTERVAL must not be negative")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseOptionalDuration accepts "0" to mean disabled.
func parseOptionalDuration(key, def string) (time.Duration, error) {
	raw := envOrDefault(key, def)
	if raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
