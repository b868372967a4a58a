package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for queryflow.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values. Secrets (database
// password, LLM API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3001"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// LLM provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Ingestion tunables
	Ingest IngestConfig `yaml:"ingest"`

	// Query orchestration tunables
	Query QueryConfig `yaml:"query"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"queryflow"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"queryflow"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	// Pool recycling, in minutes. Zero falls back to the pool defaults.
	MaxConnLifetimeMinutes int    `yaml:"max_conn_lifetime_minutes" env:"PGMAX_CONN_LIFETIME_MINUTES" env-default:"60"`
	MaxConnIdleMinutes     int    `yaml:"max_conn_idle_minutes" env:"PGMAX_CONN_IDLE_MINUTES" env-default:"30"`
	MigrationsPath         string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// LLMConfig holds text-generation provider settings.
// Provider selects the client implementation; the OpenAI-compatible client
// works against any endpoint speaking the chat-completions protocol.
type LLMConfig struct {
	// Provider is "openai" or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	// BaseURL overrides the provider endpoint (OpenAI-compatible servers).
	BaseURL string `yaml:"base_url" env:"LLM_BASE_URL" env-default:""`
	Model   string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o"`
	APIKey  string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	// MaxTokens bounds the completion size for SQL generation.
	MaxTokens int `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"1000"`
}

// IngestConfig holds upload and load-time tunables.
// These are behavior constants from the pipeline design, surfaced here so
// they can be tuned without code changes.
type IngestConfig struct {
	// MaxUploadBytes caps accepted file size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"INGEST_MAX_UPLOAD_BYTES" env-default:"10485760"`
	// BatchSize is the number of rows per multi-row INSERT during loading.
	BatchSize int `yaml:"batch_size" env:"INGEST_BATCH_SIZE" env-default:"500"`
	// ClassifyThreshold is the dominance fraction a type must reach over
	// non-null values for a column to be classified as that type.
	ClassifyThreshold float64 `yaml:"classify_threshold" env:"INGEST_CLASSIFY_THRESHOLD" env-default:"0.8"`
	// SampleSize is the number of representative values kept per column.
	SampleSize int `yaml:"sample_size" env:"INGEST_SAMPLE_SIZE" env-default:"5"`
}

// QueryConfig holds query orchestration tunables.
type QueryConfig struct {
	// HistoryLimit bounds the conversation history passed to the generator.
	HistoryLimit int `yaml:"history_limit" env:"QUERY_HISTORY_LIMIT" env-default:"20"`
	// MaxResultRows is the LIMIT hint given to the generator.
	MaxResultRows int `yaml:"max_result_rows" env:"QUERY_MAX_RESULT_ROWS" env-default:"1000"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
