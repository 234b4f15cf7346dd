package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the reportify service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port           string
	TrustedProxies []string

	// OpenRouter configuration
	OpenRouterAPIKey string
	OpenRouterModel  string
	AppURL           string

	// LocationIQ configuration
	LocationIQKey string

	// Auth configuration
	JWTSecret string

	// Provider transport timeouts
	ClassifierTimeout time.Duration
	GeocoderTimeout   time.Duration

	// Validate specificType against the classifier vocabulary on create.
	// The original kept the vocabulary open; off by default.
	StrictCategories bool
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBName:     getEnv("DB_NAME", "reportify"),

		// Server defaults
		Port:           getEnv("PORT", "8080"),
		TrustedProxies: nil,

		// OpenRouter defaults
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:  getEnv("OPENROUTER_MODEL", "google/gemini-2.0-flash-exp:free"),
		AppURL:           getEnv("APP_URL", "http://localhost:3000"),

		// LocationIQ key; reverse geocoding fails fast without it
		LocationIQKey: getEnv("LOCATIONIQ_KEY", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		ClassifierTimeout: getDurationEnv("CLASSIFIER_TIMEOUT", 30*time.Second),
		GeocoderTimeout:   getDurationEnv("GEOCODER_TIMEOUT", 30*time.Second),

		StrictCategories: getBoolEnv("STRICT_CATEGORIES", false),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getBoolEnv gets a boolean environment variable or returns a default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
