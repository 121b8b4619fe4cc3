package config

import (
	"fmt"
	"os"
)

type Config struct {
	Port      string
	OpenAIKey string

	MongoURI string
	MongoDB  string

	VideoAPIKey    string
	VideoAPISecret string
	VideoAPIURL    string

	AuthSecret string

	PublicBaseURL           string
	SkipEndCallConfirmation bool

	RedisAddr string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		OpenAIKey:               os.Getenv("OPENAI_API_KEY"),
		MongoURI:                os.Getenv("MONGODB_URI"),
		MongoDB:                 getEnv("MONGODB_DB", "meetscribe"),
		VideoAPIKey:             os.Getenv("VIDEO_API_KEY"),
		VideoAPISecret:          os.Getenv("VIDEO_API_SECRET"),
		VideoAPIURL:             getEnv("VIDEO_API_URL", "https://video.stream-io-api.com"),
		AuthSecret:              os.Getenv("AUTH_SECRET"),
		PublicBaseURL:           getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		SkipEndCallConfirmation: os.Getenv("SKIP_END_CALL_CONFIRMATION") == "true",
		RedisAddr:               os.Getenv("REDIS_ADDR"),
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("AUTH_SECRET is required")
	}

	// MONGODB_URI is optional: without it the server falls back to
	// in-memory storage. Video provider credentials are only needed by
	// the meeting endpoints and are validated when those are called.

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
