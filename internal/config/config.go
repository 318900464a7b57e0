package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config is immutable after Load; pass it by value into the pieces that need it.
type Config struct {
	ServerAddress   string
	DatabaseURL     string
	JWTSecret       string
	JWTExpiration   time.Duration
	UploadDir       string
	MaxUploadSizeMB int64

	// GCSBucket switches the blob store from local disk to Cloud Storage.
	// SafeSearch screening only applies on the GCS path.
	GCSBucket         string
	SafeSearchEnabled bool
}

func Load() (*Config, error) {
	cfg := &Config{
		ServerAddress:     getEnv("SERVER_ADDRESS", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTExpiration:     24 * time.Hour,
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSizeMB:   10,
		GCSBucket:         os.Getenv("GCS_BUCKET"),
		SafeSearchEnabled: getEnvBool("SAFESEARCH_ENABLED", false),
	}

	if v := os.Getenv("MAX_UPLOAD_SIZE_MB"); v != "" {
		if mb, err := strconv.ParseInt(v, 10, 64); err == nil && mb > 0 {
			cfg.MaxUploadSizeMB = mb
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
