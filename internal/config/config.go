// Package config provides configuration management for Kinship.
// It loads settings from environment variables with the KINSHIP_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration settings for the Kinship application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Catalog  CatalogConfig
	Graph    GraphConfig
	Security SecurityConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 7373)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains database and storage configuration.
type StorageConfig struct {
	StorageEngine   string // Storage engine type: sqlite, postgresql (default: sqlite)
	DataPath        string // Path to data directory (default: ./data)
	PostgresDSN     string // Full PostgreSQL DSN when StorageEngine is postgresql
	ConnectionsPath string // Optional connections.json for multi-book setups
}

// CatalogConfig contains relationship type catalog configuration.
type CatalogConfig struct {
	OverridesPath  string // Optional YAML file merged over the built-in types
	WatchOverrides bool   // Reload the overrides file when it changes (default: true)
}

// GraphConfig contains canvas and simulation settings.
type GraphConfig struct {
	CanvasWidth   int // Layout canvas width in px (default: 1200)
	CanvasHeight  int // Layout canvas height in px (default: 800)
	CanvasPadding int // Layout canvas edge padding in px (default: 40)
	TickRate      int // Force simulation ticks per second (default: 30)
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token
	RateLimit    int    // Requests per second per client (default: 25)
	RateBurst    int    // Rate limiter burst size (default: 50)
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the KINSHIP_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("KINSHIP_PORT", 7373),
			Host: getEnv("KINSHIP_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine:   getEnv("KINSHIP_STORAGE_ENGINE", "sqlite"),
			DataPath:        getEnv("KINSHIP_DATA_PATH", "./data"),
			PostgresDSN:     getEnv("KINSHIP_POSTGRES_DSN", ""),
			ConnectionsPath: getEnv("KINSHIP_CONNECTIONS_PATH", ""),
		},
		Catalog: CatalogConfig{
			OverridesPath:  getEnv("KINSHIP_CATALOG_OVERRIDES", ""),
			WatchOverrides: getEnvBool("KINSHIP_CATALOG_WATCH", true),
		},
		Graph: GraphConfig{
			CanvasWidth:   getEnvInt("KINSHIP_CANVAS_WIDTH", 1200),
			CanvasHeight:  getEnvInt("KINSHIP_CANVAS_HEIGHT", 800),
			CanvasPadding: getEnvInt("KINSHIP_CANVAS_PADDING", 40),
			TickRate:      getEnvInt("KINSHIP_TICK_RATE", 30),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("KINSHIP_SECURITY_MODE", "development"),
			APIToken:     getEnv("KINSHIP_API_TOKEN", ""),
			RateLimit:    getEnvInt("KINSHIP_RATE_LIMIT", 25),
			RateBurst:    getEnvInt("KINSHIP_RATE_BURST", 50),
		},
	}, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// It recognizes "true", "1", "yes" as true and "false", "0", "no" as false.
// If the environment variable exists but cannot be parsed as a boolean,
// it returns the default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}
