package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	BindHost string
	BindPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Spotify client-credentials pair and the market used for top-tracks lookups.
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyMarket       string

	// Genius API token for the lyrics search.
	GeniusAccessToken string

	// SessionSecret signs the session cookie; SessionTTLHours bounds its lifetime.
	SessionSecret   string
	SessionTTLHours int

	StaticDir string // Root directory for serving static assets

	LogLevel string
	LogPath  string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		BindHost: getEnv("IP", "0.0.0.0"),
		BindPort: getEnv("PORT", "8081"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // No hardcoded default for passwords
		DBName:     getEnv("DB_NAME", "favefm"),

		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyMarket:       getEnv("SPOTIFY_MARKET", "US"),

		GeniusAccessToken: os.Getenv("GENIUS_ACCESS_TOKEN"),

		SessionSecret:   getEnv("SESSION_SECRET", "favefm-dev-secret"),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24),

		StaticDir: getEnv("STATIC_DIR", "static"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogPath:  getEnv("LOG_PATH", ""),
	}
}
