package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the fare service
type Config struct {
	// Store selection
	StoreDriver  string
	StoreTimeout time.Duration

	// SQLite
	DatabasePath string

	// Postgres
	DatabaseURL string

	// MySQL / MariaDB
	MySQLDSN string

	// MongoDB
	MongoURI    string
	MongoDBName string

	// Badger
	BadgerDir string

	// HTTP API
	Port        string
	CORSOrigins []string
	CacheTTL    time.Duration

	// Pricing
	LineConfigPath string
	Currency       string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		StoreDriver:  strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
		StoreTimeout: time.Duration(getEnvInt("STORE_TIMEOUT_SECONDS", 10)) * time.Second,

		DatabasePath: getEnv("SQLITE_DATABASE", "data/fares.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		MySQLDSN:     getEnv("MYSQL_DSN", ""),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "rail_admin"),

		BadgerDir: getEnv("BADGER_DIR", "data/badger"),

		Port:        getEnv("PORT", "8081"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		CacheTTL:    time.Duration(getEnvInt("CACHE_TTL_SECONDS", 30)) * time.Second,

		LineConfigPath: getEnv("LINE_CONFIG", ""),
		Currency:       getEnv("FARE_CURRENCY", "ETB"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
