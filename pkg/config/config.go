package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	PhotosBucket            string
	AvatarsBucket           string
	StoragePublicBase       string
	AllowedOrigins          []string
	AuthRequired            bool
	RedisAddr               string
	RedisPassword           string
	ReconcileGrace          time.Duration
}

// Load reads the process configuration, picking up a local .env file when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "trailback"),
		PhotosBucket:            getEnv("STORAGE_BUCKET_PHOTOS", "photos"),
		AvatarsBucket:           getEnv("STORAGE_BUCKET_AVATARS", "avatars"),
		StoragePublicBase:       getEnv("STORAGE_PUBLIC_BASE", "https://storage.googleapis.com"),
		AllowedOrigins:          splitList(getEnv("ALLOWED_ORIGINS", "*")),
		AuthRequired:            getBool("AUTH_REQUIRED", false),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		ReconcileGrace:          getDuration("RECONCILE_GRACE", time.Hour),
	}
}

// IsProduction reports whether the service runs outside of local development.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
