package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var (
	PORT    string
	DB_URL  string
	APP_ENV string

	API_URL     string
	WEB_URL     string
	CORS_ORIGIN string

	// auth provider (GoTrue-compatible)
	AUTH_URL              string
	AUTH_ANON_KEY         string
	AUTH_SERVICE_ROLE_KEY string
	AUTH_JWT_SECRET       string
	AUTH_OIDC_ISSUER      string
	AUTH_RATE_LIMIT       float64

	STRIPE_SECRET_KEY             string
	STRIPE_CLIENT_ID              string
	STRIPE_WEBHOOK_SECRET         string
	STRIPE_CONNECT_WEBHOOK_SECRET string
	STRIPE_PLATFORM_PRICE_ID      string

	RESEND_API_KEY string
	EMAIL_FROM     string

	LOG_LEVEL  string
	LOG_FORMAT string
)

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "3002")
	DB_URL = mustEnv("DB_URL")
	APP_ENV = getEnv("APP_ENV", "development")

	API_URL = strings.TrimRight(getEnv("API_URL", "http://localhost:3002"), "/")
	WEB_URL = strings.TrimRight(getEnv("WEB_URL", "http://localhost:3000"), "/")
	CORS_ORIGIN = getEnv("CORS_ORIGIN", WEB_URL)

	AUTH_URL = strings.TrimRight(mustEnv("SUPABASE_URL"), "/")
	AUTH_ANON_KEY = mustEnv("SUPABASE_ANON_KEY")
	AUTH_SERVICE_ROLE_KEY = getEnv("SUPABASE_SERVICE_ROLE_KEY", "")
	AUTH_JWT_SECRET = getEnv("SUPABASE_JWT_SECRET", "")
	AUTH_OIDC_ISSUER = getEnv("AUTH_OIDC_ISSUER", "")
	AUTH_RATE_LIMIT = getEnvFloat("AUTH_RATE_LIMIT", 1)

	if AUTH_JWT_SECRET == "" && AUTH_OIDC_ISSUER == "" {
		log.Fatal().Msg("Either SUPABASE_JWT_SECRET or AUTH_OIDC_ISSUER must be set")
	}

	STRIPE_SECRET_KEY = getEnv("STRIPE_SECRET_KEY", "")
	STRIPE_CLIENT_ID = getEnv("STRIPE_CLIENT_ID", "")
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")
	STRIPE_CONNECT_WEBHOOK_SECRET = getEnv("STRIPE_CONNECT_WEBHOOK_SECRET", "")
	STRIPE_PLATFORM_PRICE_ID = getEnv("STRIPE_PLATFORM_PRICE_ID", "")

	RESEND_API_KEY = getEnv("RESEND_API_KEY", "")
	EMAIL_FROM = getEnv("EMAIL_FROM", "no-reply@localhost")
}

// LoadLogging reads only the logging settings so the logger can be built
// before the rest of the environment is validated.
func LoadLogging() {
	_ = godotenv.Load()
	LOG_LEVEL = getEnv("LOG_LEVEL", "info")
	LOG_FORMAT = getEnv("LOG_FORMAT", "json")
}

// IsProduction reports whether APP_ENV names a production deployment.
func IsProduction() bool {
	return strings.EqualFold(APP_ENV, "production")
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatal().Str("key", key).Msg("Missing required environment variable")
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Msg("invalid number, using default")
		return fallback
	}
	return v
}
