package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries everything the server needs at startup. Values come from
// the environment; .env files are loaded by main before Load runs.
type Config struct {
	Port        int
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool

	// Identity provider (hosted auth) settings. JWKSURL enables RS256
	// verification of provider-issued sessions; when empty, JWTSecret is
	// used for HS256 instead.
	IdentityBaseURL    string
	IdentityServiceKey string
	JWKSURL            string
	JWTSecret          string

	SessionTTL time.Duration

	// ExpiringSoonDays is the alert window the nightly sweep scans.
	ExpiringSoonDays int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:             8080,
		RedisAddr:        "localhost:6379",
		MinioEndpoint:    "localhost:9000",
		MinioAccessKey:   "minioadmin",
		MinioSecretKey:   "minioadmin",
		SessionTTL:       24 * time.Hour,
		ExpiringSoonDays: 7,
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			cfg.RedisDB = db
		}
	}

	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		cfg.MinioEndpoint = endpoint
	}
	if key := os.Getenv("MINIO_ACCESS_KEY"); key != "" {
		cfg.MinioAccessKey = key
	}
	if secret := os.Getenv("MINIO_SECRET_KEY"); secret != "" {
		cfg.MinioSecretKey = secret
	}
	cfg.MinioUseSSL = os.Getenv("MINIO_USE_SSL") == "true"

	cfg.IdentityBaseURL = os.Getenv("IDENTITY_BASE_URL")
	if cfg.IdentityBaseURL == "" {
		return nil, fmt.Errorf("IDENTITY_BASE_URL environment variable is required")
	}
	cfg.IdentityServiceKey = os.Getenv("IDENTITY_SERVICE_KEY")
	if cfg.IdentityServiceKey == "" {
		return nil, fmt.Errorf("IDENTITY_SERVICE_KEY environment variable is required")
	}
	cfg.JWKSURL = os.Getenv("IDENTITY_JWKS_URL")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")

	if ttlStr := os.Getenv("SESSION_TTL_HOURS"); ttlStr != "" {
		hours, err := strconv.Atoi(ttlStr)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL_HOURS %q", ttlStr)
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}

	if daysStr := os.Getenv("EXPIRING_SOON_DAYS"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 0 {
			return nil, fmt.Errorf("invalid EXPIRING_SOON_DAYS %q", daysStr)
		}
		cfg.ExpiringSoonDays = days
	}

	return cfg, nil
}
