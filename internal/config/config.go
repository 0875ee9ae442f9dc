package config

import (
	"os"
	"time"

	"arrears-service/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	// JWT
	JWT jwt.Config

	// Upload
	MaxUploadBytes int64
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8000"),
		RedisAddr: getEnv("REDIS_ADDR", "redis-arrears:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		JWT: jwt.Config{
			PrivPath: getEnv("JWT_PRIVATE_KEY_PATH", "/app/secrets/jwt_private.pem"),
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", "/app/secrets/jwt_public.pem"),
			Issuer:   "arrears-service",
			Audience: "arrears-backoffice",
			TTL:      12 * time.Hour,
			KID:      "arrears-key",
		},

		MaxUploadBytes: 60 << 20, // spreadsheet uploads are capped at 60MB
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
