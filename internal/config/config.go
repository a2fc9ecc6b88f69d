package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverS3       = "s3"
)

type Config struct {
	StoreDriver   string
	DataDir       string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string
	S3Bucket      string
	S3Region      string
	S3Prefix      string
	Locale        string
	LogLevel      string
	Seed          bool
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	// .env is optional when variables come from the environment (Docker, CI, ...).
	_ = godotenv.Load()

	cfg := &Config{
		StoreDriver:   strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER"))),
		DataDir:       strings.TrimSpace(os.Getenv("DATA_DIR")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MongoURI:      strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDatabase: strings.TrimSpace(os.Getenv("MONGO_DATABASE")),
		S3Bucket:      strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:      strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Prefix:      os.Getenv("S3_PREFIX"),
		Locale:        strings.TrimSpace(os.Getenv("LOCALE")),
		LogLevel:      strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		Seed:          true,
	}

	if raw := strings.TrimSpace(os.Getenv("SEED")); raw != "" {
		seed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("config: SEED must be a boolean, got %q", raw)
		}
		cfg.Seed = seed
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate fills defaults and checks the settings the selected driver needs.
func (c *Config) validate() error {
	if c.StoreDriver == "" {
		c.StoreDriver = DriverFile
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverFile:
		if c.DataDir == "" {
			c.DataDir = "./data"
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			c.DatabaseURL = "postgres://localhost:5432/meeplebar?sslmode=disable"
		}
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: DATABASE_URL invalid (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: DATABASE_URL invalid (%q): missing scheme or host", c.DatabaseURL)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("config: MONGO_URI is required for the mongo store")
		}
		if c.MongoDatabase == "" {
			c.MongoDatabase = "meeplebar"
		}
	case DriverS3:
		if c.DataDir == "" {
			c.DataDir = "./data"
		}
		if c.S3Bucket == "" {
			return fmt.Errorf("config: S3_BUCKET is required for the s3 store")
		}
		if c.S3Region == "" {
			return fmt.Errorf("config: S3_REGION is required for the s3 store")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}
