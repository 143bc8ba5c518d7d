package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	OpenAI    OpenAIConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadMB    int64    `mapstructure:"max_upload_mb"`
}

// OpenAIConfig holds configuration for the vision model API
type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// StorageConfig holds the on-disk layout
type StorageConfig struct {
	UploadsDir   string `mapstructure:"uploads_dir"`
	ProcessedDir string `mapstructure:"processed_dir"`
	EntriesFile  string `mapstructure:"entries_file"`
}

// RateLimitConfig holds rate limiting configuration (requests per minute, 0 disables)
type RateLimitConfig struct {
	PerIP  int `mapstructure:"per_ip"`
	Vision int `mapstructure:"vision"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" or "json"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/foodlens/")

	// FOODLENS_OPENAI_API_KEY -> openai.api_key
	v.SetEnvPrefix("FOODLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// The conventional OpenAI variable works too
	if err := v.BindEnv("openai.api_key", "FOODLENS_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding env: %w", err)
	}

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile populates the process environment from ./.env when present.
// Variables that are already set are left alone.
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_mb", 20)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 300)

	// Storage defaults
	v.SetDefault("storage.uploads_dir", "uploads")
	v.SetDefault("storage.processed_dir", "processed")
	v.SetDefault("storage.entries_file", "entries.json")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 30)
	v.SetDefault("ratelimit.vision", 60)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY or FOODLENS_OPENAI_API_KEY)")
	}

	if config.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("openai max_tokens must be positive, got: %d", config.OpenAI.MaxTokens)
	}

	if config.Storage.UploadsDir == "" || config.Storage.ProcessedDir == "" || config.Storage.EntriesFile == "" {
		return fmt.Errorf("storage uploads_dir, processed_dir and entries_file must be set")
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'text' or 'json', got: %s", config.Log.Format)
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.Vision < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	return nil
}
