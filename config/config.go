package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	DatabaseURL   string
	SessionSecret string
	ServerPort    int

	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURL  string

	AllowedOrigins []string
	APIRateLimit   float64
	APIRateBurst   int
	SessionTTL     time.Duration
	SecureCookies  bool
	LenientFilters bool
}

// Load reads the configuration from environment variables.
// A .env file is loaded first when present (useful for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	rateLimit, err := floatEnv("API_RATE_LIMIT", 5)
	if err != nil {
		return nil, err
	}
	if rateLimit <= 0 {
		return nil, fmt.Errorf("API_RATE_LIMIT must be positive, got %v", rateLimit)
	}

	rateBurst, err := intEnv("API_RATE_BURST", 10)
	if err != nil {
		return nil, err
	}
	if rateBurst <= 0 {
		return nil, fmt.Errorf("API_RATE_BURST must be positive, got %d", rateBurst)
	}

	sessionTTL := 7 * 24 * time.Hour
	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		sessionTTL, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL environment variable: %w", err)
		}
	}

	secureCookies, err := boolEnv("SECURE_COOKIES", true)
	if err != nil {
		return nil, err
	}
	lenientFilters, err := boolEnv("LENIENT_FILTERS", true)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:         dbURL,
		SessionSecret:       secret,
		ServerPort:          port,
		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordRedirectURL:  os.Getenv("DISCORD_REDIRECT_URL"),
		AllowedOrigins:      splitList(os.Getenv("ALLOWED_ORIGINS"), []string{"*"}),
		APIRateLimit:        rateLimit,
		APIRateBurst:        rateBurst,
		SessionTTL:          sessionTTL,
		SecureCookies:       secureCookies,
		LenientFilters:      lenientFilters,
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func floatEnv(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string, def []string) []string {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
