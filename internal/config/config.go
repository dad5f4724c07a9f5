package config

import (
	"os"
	"strconv"

	"docforge/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort      string
	LogLevel        string
	TemplatePath    string
	MaxSpecSize     int64
	MaxBatchWorkers int
	SupabaseURL     string
	SupabaseKey     string
	AssetBucket     string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:      getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		TemplatePath:    getEnvOrDefault("TEMPLATE_PATH", "./templates"),
		MaxSpecSize:     getEnvInt64OrDefault("MAX_SPEC_SIZE", 10*1024*1024), // 10MB default
		MaxBatchWorkers: getEnvIntOrDefault("MAX_BATCH_WORKERS", 4),
		SupabaseURL:     getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:     getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		AssetBucket:     getEnvOrDefault("ASSET_BUCKET", "assets"),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetTemplatePath returns the local asset directory path
func (c *AppConfig) GetTemplatePath() string {
	return c.TemplatePath
}

// GetMaxSpecSize returns the maximum accepted specification size in bytes
func (c *AppConfig) GetMaxSpecSize() int64 {
	return c.MaxSpecSize
}

// GetMaxBatchWorkers returns the batch generation concurrency limit
func (c *AppConfig) GetMaxBatchWorkers() int {
	return c.MaxBatchWorkers
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetAssetBucket returns the Supabase storage bucket for assets
func (c *AppConfig) GetAssetBucket() string {
	return c.AssetBucket
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
