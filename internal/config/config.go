package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Catalog backends.
const (
	CatalogMongo = "mongo"
	CatalogSeed  = "seed"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode  string // Set via flag, not env
	LogLevel string

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Postgres (property info store); empty disables the property-info routes
	DatabaseURL string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret string
	JwtTTL    time.Duration

	// Server
	ApiPort        string
	ServiceApiPort string

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ImageBaseS3URL     string
	ImageMaxDimension  int
	ImageMaxSizeMB     int
	UploadURLTTL       time.Duration

	// Catalog and search
	CatalogBackend  string
	DefaultPriceMax int64 // 0 leaves the price range open-ended
	DefaultSort     string
	SearchCacheTTL  time.Duration // 0 disables the search cache
	SuggestionLimit int
	FeaturedLimit   int

	// App Defaults
	AppName        string
	PasswordRegexp string

	// Rate Limiting Defaults
	RateLimitSoftBucketSize int
	RateLimitSoftRefillRate int // tokens per second
	RateLimitHardBucketSize int
	RateLimitHardRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists || value == "" {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "realestate")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ImageBaseS3URL = getEnv("IMAGE_BASE_S3_URL", "")
	cfg.AppName = getEnv("APP_NAME", "RealEstate")
	cfg.PasswordRegexp = getEnv("PASSWORD_REGEXP", "^.{8,}$")

	cfg.CatalogBackend = getEnv("CATALOG_BACKEND", CatalogMongo)
	if cfg.CatalogBackend != CatalogMongo && cfg.CatalogBackend != CatalogSeed {
		return nil, fmt.Errorf("invalid CATALOG_BACKEND: %q", cfg.CatalogBackend)
	}
	cfg.DefaultSort = getEnv("DEFAULT_SORT", "price-asc")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtTTLSeconds, err := strconv.ParseInt(getEnv("JWT_TTL_SECONDS", "3600"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL_SECONDS: %w", err)
	}
	cfg.JwtTTL = time.Duration(jwtTTLSeconds) * time.Second

	cfg.ImageMaxDimension, err = strconv.Atoi(getEnv("IMAGE_MAX_DIMENSION", "2048"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_DIMENSION: %w", err)
	}

	cfg.ImageMaxSizeMB, err = strconv.Atoi(getEnv("IMAGE_MAX_SIZE_MB", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_MAX_SIZE_MB: %w", err)
	}

	uploadURLTTLMinutes, err := strconv.ParseInt(getEnv("UPLOAD_URL_TTL_MINUTES", "15"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_URL_TTL_MINUTES: %w", err)
	}
	cfg.UploadURLTTL = time.Duration(uploadURLTTLMinutes) * time.Minute

	cfg.DefaultPriceMax, err = strconv.ParseInt(getEnv("DEFAULT_PRICE_MAX", "0"), 10, 64)
	if err != nil || cfg.DefaultPriceMax < 0 {
		return nil, fmt.Errorf("invalid DEFAULT_PRICE_MAX: %w", errOrNegative(err))
	}

	searchCacheTTLSeconds, err := strconv.ParseInt(getEnv("SEARCH_CACHE_TTL_SECONDS", "60"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SEARCH_CACHE_TTL_SECONDS: %w", err)
	}
	cfg.SearchCacheTTL = time.Duration(searchCacheTTLSeconds) * time.Second

	cfg.SuggestionLimit, err = strconv.Atoi(getEnv("SUGGESTION_LIMIT", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUGGESTION_LIMIT: %w", err)
	}

	cfg.FeaturedLimit, err = strconv.Atoi(getEnv("FEATURED_LIMIT", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEATURED_LIMIT: %w", err)
	}

	// Rate Limiting
	cfg.RateLimitSoftBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_SOFT_BUCKET_SIZE", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SOFT_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitSoftRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_SOFT_REFILL_RATE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SOFT_REFILL_RATE: %w", err)
	}
	cfg.RateLimitHardBucketSize, err = strconv.Atoi(getEnv("RATE_LIMIT_HARD_BUCKET_SIZE", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_HARD_BUCKET_SIZE: %w", err)
	}
	cfg.RateLimitHardRefillRate, err = strconv.Atoi(getEnv("RATE_LIMIT_HARD_REFILL_RATE", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_HARD_REFILL_RATE: %w", err)
	}

	return cfg, nil
}

func errOrNegative(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("must not be negative")
}
