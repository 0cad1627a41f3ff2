// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	GeminiAPIKey string
	GeminiModel  string
	WhisperURL   string

	SessionTTL    time.Duration
	SweepInterval time.Duration
	MaxQuestions  int

	Coaching CoachingConfig
}

// CoachingConfig controls the delivery analysis thresholds.
type CoachingConfig struct {
	WPMFast         float64
	WPMSlow         float64
	VolumeThreshold float64
	FillerWarnRatio float64
	SilenceFloor    float64
	EmitInterval    time.Duration
	SustainWindow   time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/intervu.db"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		WhisperURL:   getEnv("WHISPER_URL", ""),

		SessionTTL:    getEnvDuration("SESSION_TTL", 60*time.Minute),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
		MaxQuestions:  getEnvInt("MAX_QUESTIONS", 10),

		Coaching: CoachingConfig{
			WPMFast:         getEnvFloat("WPM_FAST", 160),
			WPMSlow:         getEnvFloat("WPM_SLOW", 100),
			VolumeThreshold: getEnvFloat("VOLUME_THRESHOLD", 0.02),
			FillerWarnRatio: getEnvFloat("FILLER_WARN_RATIO", 0.08),
			SilenceFloor:    getEnvFloat("SILENCE_FLOOR", 0.008),
			EmitInterval:    getEnvDuration("EMIT_INTERVAL", 250*time.Millisecond),
			SustainWindow:   getEnvDuration("SUSTAIN_WINDOW", 1500*time.Millisecond),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.MaxQuestions < 0 {
		return fmt.Errorf("MAX_QUESTIONS cannot be negative")
	}
	if c.Coaching.WPMFast <= c.Coaching.WPMSlow {
		return fmt.Errorf("WPM_FAST must be greater than WPM_SLOW")
	}
	if c.Coaching.VolumeThreshold <= 0 {
		return fmt.Errorf("VOLUME_THRESHOLD must be > 0")
	}
	if c.Coaching.EmitInterval <= 0 {
		return fmt.Errorf("EMIT_INTERVAL must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
