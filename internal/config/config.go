// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Sink kinds accepted by RISK_SINK
const (
	SinkBigQuery = "bigquery"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
	SinkS3       = "s3"
)

// Config holds application configuration
type Config struct {
	Port             int
	LogLevel         string
	LogPretty        bool
	DevMode          bool
	HTTPWriteTimeout time.Duration
	PortfolioPath    string // Read on every run
	Schedule         string // Optional cron expression; empty disables the in-process trigger
	Sink             string
	Fetch            FetchConfig
	BigQuery         BigQueryConfig
	SQLite           SQLiteConfig
	Postgres         PostgresConfig
	S3               S3Config
}

// FetchConfig controls market data retrieval
type FetchConfig struct {
	Period     string // Provider period notation, "7d" covers the last week of daily closes
	Retries    int
	RetryDelay time.Duration
}

// BigQueryConfig identifies the output table
type BigQueryConfig struct {
	ProjectID       string
	DatasetID       string
	TableID         string
	CredentialsPath string // Service account JSON; empty uses application default credentials
}

// TableRef returns project.dataset.table
func (c BigQueryConfig) TableRef() string {
	return fmt.Sprintf("%s.%s.%s", c.ProjectID, c.DatasetID, c.TableID)
}

// SQLiteConfig holds the local sink location
type SQLiteConfig struct {
	Path string
}

// PostgresConfig holds the warehouse sink connection
type PostgresConfig struct {
	DSN   string
	Table string
}

// S3Config holds the object sink location and credentials
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // Custom endpoint for S3-compatible stores (R2, MinIO)
	AccessKeyID     string
	SecretAccessKey string
	Format          string // jsonl or msgpack
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvAsInt("PORT", 8080),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogPretty:        getEnvAsBool("LOG_PRETTY", false),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		HTTPWriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", 5*time.Minute),
		PortfolioPath:    getEnv("PORTFOLIO_PATH", "portfolio.json"),
		Schedule:         getEnv("RISK_SCHEDULE", ""),
		Sink:             strings.ToLower(getEnv("RISK_SINK", SinkBigQuery)),
		Fetch: FetchConfig{
			Period:     getEnv("FETCH_PERIOD", "7d"),
			Retries:    getEnvAsInt("FETCH_RETRIES", 3),
			RetryDelay: getEnvAsDuration("FETCH_RETRY_DELAY", 2*time.Second),
		},
		BigQuery: BigQueryConfig{
			ProjectID:       getEnv("PROJECT_ID", ""),
			DatasetID:       getEnv("DATASET_ID", ""),
			TableID:         getEnv("TABLE_ID", ""),
			CredentialsPath: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "data/risk.db"),
		},
		Postgres: PostgresConfig{
			DSN:   getEnv("POSTGRES_DSN", ""),
			Table: getEnv("POSTGRES_TABLE", "risk_records"),
		},
		S3: S3Config{
			Bucket:          getEnv("S3_BUCKET", ""),
			Prefix:          getEnv("S3_PREFIX", "risk"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Format:          strings.ToLower(getEnv("S3_FORMAT", "jsonl")),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.HTTPWriteTimeout <= 0 {
		return fmt.Errorf("HTTP_WRITE_TIMEOUT must be positive")
	}
	if c.PortfolioPath == "" {
		return fmt.Errorf("PORTFOLIO_PATH is required")
	}
	if c.Fetch.Retries < 1 {
		return fmt.Errorf("FETCH_RETRIES must be at least 1, got %d", c.Fetch.Retries)
	}
	if c.Fetch.RetryDelay < 0 {
		return fmt.Errorf("FETCH_RETRY_DELAY must not be negative")
	}

	switch c.Sink {
	case SinkBigQuery:
		var missing []string
		if c.BigQuery.ProjectID == "" {
			missing = append(missing, "PROJECT_ID")
		}
		if c.BigQuery.DatasetID == "" {
			missing = append(missing, "DATASET_ID")
		}
		if c.BigQuery.TableID == "" {
			missing = append(missing, "TABLE_ID")
		}
		if len(missing) > 0 {
			return fmt.Errorf("bigquery sink requires %s", strings.Join(missing, ", "))
		}
	case SinkSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite sink requires SQLITE_PATH")
		}
	case SinkPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres sink requires POSTGRES_DSN")
		}
		if c.Postgres.Table == "" {
			return fmt.Errorf("postgres sink requires POSTGRES_TABLE")
		}
	case SinkS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3 sink requires S3_BUCKET")
		}
		if c.S3.Format != "jsonl" && c.S3.Format != "msgpack" {
			return fmt.Errorf("unsupported S3_FORMAT %q (want jsonl or msgpack)", c.S3.Format)
		}
	default:
		return fmt.Errorf("unsupported RISK_SINK %q", c.Sink)
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("2s") or bare seconds ("2")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}
