// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	Port            string `mapstructure:"PORT"`
	DBHost          string `mapstructure:"DB_HOST"`
	DBPort          string `mapstructure:"DB_PORT"`
	DBUser          string `mapstructure:"DB_USER"`
	DBPassword      string `mapstructure:"DB_PASSWORD"`
	DBName          string `mapstructure:"DB_NAME"`
	DBSSLMode       string `mapstructure:"DB_SSLMODE"`
	RedisURL        string `mapstructure:"REDIS_URL"`
	AllowedOrigins  string `mapstructure:"ALLOWED_ORIGINS"`
	Env             string `mapstructure:"APP_ENV"`
	MediaRoot       string `mapstructure:"MEDIA_ROOT"`
	MediaBaseURL    string `mapstructure:"MEDIA_BASE_URL"`
	CaptionProxyURL string `mapstructure:"CAPTION_PROXY_URL"`
	ChangeFeed      string `mapstructure:"CHANGEFEED_DRIVER"`
	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string `mapstructure:"OTLP_ENDPOINT"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; env vars and defaults cover everything.
	_ = viper.ReadInConfig()

	viper.SetDefault("PORT", "8390")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "meydan")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("MEDIA_ROOT", "./media")
	viper.SetDefault("MEDIA_BASE_URL", "http://localhost:8390/media")
	viper.SetDefault("CAPTION_PROXY_URL", "http://localhost:8391/generate-caption")
	viper.SetDefault("CHANGEFEED_DRIVER", "redis")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction && c.JWTSecret == "your-secret-key-change-in-production" {
		return errors.New("JWT_SECRET must be changed from the default in production")
	}

	switch c.ChangeFeed {
	case "redis", "postgres":
	default:
		return fmt.Errorf("CHANGEFEED_DRIVER must be redis or postgres, got %q", c.ChangeFeed)
	}

	return nil
}

// DSN builds the Postgres connection string for the configured database.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// CaptionConfig holds configuration for the standalone caption proxy. The
// Gemini key is deliberately kept off the main server Config so it cannot
// leak through any client-visible surface.
type CaptionConfig struct {
	Port         string `mapstructure:"CAPTION_PORT"`
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
}

// LoadCaptionConfig loads configuration for the caption proxy process.
func LoadCaptionConfig() (*CaptionConfig, error) {
	viper.AutomaticEnv()
	viper.SetDefault("CAPTION_PORT", "8391")
	viper.SetDefault("GEMINI_API_KEY", "")

	var cfg CaptionConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	return &cfg, nil
}
