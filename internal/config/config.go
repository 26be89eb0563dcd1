package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/octobees/itinerary-maker/api/internal/storage"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	MigrateOnStart bool
	JWTSecret      string
	Port           string
	TokenTTL       time.Duration

	RedisURL             string
	DelegationCacheTTL   time.Duration
	DelegationFullWeight int

	RateLimitItinerary RateLimitConfig
	ItineraryTimeout   time.Duration
	ExportURLExpiry    time.Duration
	DefaultPhoneRegion string

	Blob          storage.Config
	WorkerBaseURL string

	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		MigrateOnStart:     parseBool(getEnv("MIGRATE_ON_START", "false")),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret"),
		Port:               getEnv("PORT", "8080"),
		TokenTTL:           parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		RedisURL:           os.Getenv("REDIS_URL"),
		DelegationCacheTTL: parseDuration(getEnv("DELEGATION_CACHE_TTL", "5m"), 5*time.Minute),
		ItineraryTimeout:   parseDuration(getEnv("ITINERARY_TIMEOUT", "2m"), 2*time.Minute),
		ExportURLExpiry:    parseDuration(getEnv("EXPORT_URL_EXPIRY", "15m"), 15*time.Minute),
		DefaultPhoneRegion: strings.ToUpper(getEnv("DEFAULT_PHONE_REGION", "ID")),
		Blob: storage.Config{
			Driver:          getEnv("BLOB_DRIVER", "memory"),
			Bucket:          os.Getenv("BLOB_S3_BUCKET"),
			Region:          getEnv("BLOB_S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("BLOB_S3_ENDPOINT"),
			PathStyle:       parseBool(getEnv("BLOB_S3_PATH_STYLE", "false")),
			AccessKeyID:     os.Getenv("BLOB_S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("BLOB_S3_SECRET_ACCESS_KEY"),
		},
		WorkerBaseURL: os.Getenv("WORKER_BASE_URL"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       os.Getenv("LOG_FILE"),
	}

	for key, dest := range map[string]*int32{"DB_MAX_CONNS": &cfg.DBMaxConns, "DB_MIN_CONNS": &cfg.DBMinConns} {
		n, err := strconv.ParseInt(getEnv(key, "0"), 10, 32)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s value: %q", key, os.Getenv(key))
		}
		*dest = int32(n)
	}

	weight, err := strconv.Atoi(getEnv("DELEGATION_FULL_WEIGHT", "0"))
	if err != nil || weight < 0 {
		return nil, fmt.Errorf("invalid DELEGATION_FULL_WEIGHT value: %q", os.Getenv("DELEGATION_FULL_WEIGHT"))
	}
	cfg.DelegationFullWeight = weight

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_ITINERARY", "10/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_ITINERARY value: %w", err)
	}
	cfg.RateLimitItinerary = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseBool(input string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(input))
	return err == nil && v
}
