package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from YAML files and environment variables.
// Environment variables take precedence over YAML values.
// Env prefix: RAG_ (e.g., RAG_SERVER_PORT, RAG_PROCESSING_MAX_CONCURRENT)
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("app")
	v.SetConfigType("yaml")

	// Add config paths (searched in order)
	v.AddConfigPath("./settings")
	v.AddConfigPath("../settings")
	v.AddConfigPath("../../settings")
	v.AddConfigPath(".")

	// Environment variable settings
	v.SetEnvPrefix("RAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is acceptable, we'll use env vars and defaults
	}

	// Set defaults
	setDefaults(v)

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Special handling for PORT env var (common in container environments)
	if cfg.Server.Port == "" {
		if port := os.Getenv("PORT"); port != "" {
			cfg.Server.Port = port
		}
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.shutdown_timeout", 10)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "rag_service")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_pool_size", 10)
	v.SetDefault("database.min_pool_size", 2)
	v.SetDefault("database.max_idle_time_seconds", 300)

	// Storage (blob) defaults
	v.SetDefault("storage.gc_interval_seconds", 600)
	v.SetDefault("storage.gc_grace_seconds", 3600)

	// Embedding provider defaults
	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("embedding.openai_model", "text-embedding-3-small")
	v.SetDefault("embedding.batch_size", 50)
	v.SetDefault("embedding.sdk_timeout_seconds", 30)
	v.SetDefault("embedding.hard_timeout_seconds", 45)

	// Chat provider defaults
	v.SetDefault("chat.provider", "openai")
	v.SetDefault("chat.standard_model", "gpt-4o-mini")
	v.SetDefault("chat.reasoning_model", "o3-mini")
	v.SetDefault("chat.summarization_timeout_seconds", 60)
	v.SetDefault("chat.idle_token_timeout_seconds", 30)

	// Processing / concurrency defaults
	v.SetDefault("processing.max_concurrent", 5)
	v.SetDefault("processing.registry_refresh_period_seconds", 120)
	v.SetDefault("processing.stuck_threshold_seconds", 300)
	v.SetDefault("processing.stuck_sweep_interval_seconds", 60)
	v.SetDefault("processing.similarity_floor", 0.3)
	v.SetDefault("processing.system_chunk_limit", 50)

	// Scheduler defaults
	v.SetDefault("scheduler.enabled", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment default
	v.SetDefault("environment", "development")
}

// MustLoad loads configuration and panics on error.
// Use this only in main() or initialization code.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}
