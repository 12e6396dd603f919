package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all runtime configuration for the backend.
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	TokenExpiry time.Duration

	GeminiAPIKey string
	FlwSecretKey string

	AppBaseURL string
	UploadDir  string
	CORSOrigin string
}

// LoadConfig reads configuration from a .env file (if present) and the
// environment. Optional values fall back to defaults; required values are
// checked by the caller at startup.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables")
	}

	expiryHours := 72
	if raw := os.Getenv("TOKEN_EXPIRY_HOURS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			expiryHours = parsed
		}
	}

	return &Config{
		Port:         getEnv("PORT", "8080"),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      getEnv("MONGO_DB", "jobreadyai"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenExpiry:  time.Duration(expiryHours) * time.Hour,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		FlwSecretKey: os.Getenv("FLW_SECRET_KEY"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:3000"),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads"),
		CORSOrigin:   getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
