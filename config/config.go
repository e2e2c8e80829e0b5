// Package config loads all runtime settings once at startup. Nothing else
// in the codebase reads the process environment.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting the server needs.
type Config struct {
	Port                  string
	MongoURI              string
	MongoDatabase         string
	JWTSecret             string
	JWTExpiry             time.Duration
	AdminRegistrationCode string
	PostmarkToken         string
	EmailSender           string
	UploadDir             string
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() Config {
	// Missing .env is fine; real env vars take over in that case.
	_ = godotenv.Load()

	cfg := Config{
		Port:                  getEnv("PORT", "8000"),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:         getEnv("MONGO_DATABASE", "jewellery"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		JWTExpiry:             7 * 24 * time.Hour,
		AdminRegistrationCode: os.Getenv("ADMIN_REGISTRATION_CODE"),
		PostmarkToken:         os.Getenv("POSTMARK_API_TOKEN"),
		EmailSender:           os.Getenv("EMAIL_SENDER"),
		UploadDir:             getEnv("UPLOAD_DIR", "uploads"),
	}
	if raw := os.Getenv("JWT_EXPIRES_IN"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.JWTExpiry = d
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
