package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Price providers
	CoinGeckoBaseURL   string
	AlphaVantageAPIKey string
	FinnhubAPIKey      string

	// News search provider
	NewsAPIKey string

	// Text analysis providers
	HuggingFaceAPIKey string
	PerspectiveAPIKey string

	// Scheduler
	PriceRefreshInterval time.Duration
	NewsRefreshInterval  time.Duration
	// PacingRPS bounds how many assets per second a batch cycle may touch,
	// keeping outbound request rates polite toward upstream APIs.
	PacingRPS float64
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "marketpulse"),
		DBPassword: getEnv("DB_PASSWORD", "marketpulse"),
		DBName:     getEnv("DB_NAME", "marketpulse"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Providers. Credentials default to empty: components that need a
		// missing credential degrade instead of failing at startup.
		CoinGeckoBaseURL:   getEnv("COINGECKO_API_URL", "https://api.coingecko.com/api/v3"),
		AlphaVantageAPIKey: getEnv("ALPHA_VANTAGE_API_KEY", ""),
		FinnhubAPIKey:      getEnv("FINNHUB_API_KEY", ""),
		NewsAPIKey:         getEnv("NEWSAPI_KEY", ""),
		HuggingFaceAPIKey:  getEnv("HUGGINGFACE_API_KEY", ""),
		PerspectiveAPIKey:  getEnv("PERSPECTIVE_API_KEY", ""),
	}

	// Parse JWT expiration duration
	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 24*time.Hour)

	// Scheduler intervals and pacing
	config.PriceRefreshInterval = getDuration("PRICE_REFRESH_INTERVAL", 10*time.Minute)
	config.NewsRefreshInterval = getDuration("NEWS_REFRESH_INTERVAL", 20*time.Minute)
	config.PacingRPS = getFloat("PACING_RPS", 10)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getFloat parses a float environment variable, falling back to the default
// on absence or parse failure.
func getFloat(key string, defaultValue float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %g\n", key, raw, defaultValue)
		return defaultValue
	}
	return f
}

// getDuration parses a duration environment variable, falling back to the
// default on absence or parse failure.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}
