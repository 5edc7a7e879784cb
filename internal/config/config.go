package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend selects which Persistence Gateway implementation serves the portal.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Persistence backend: "remote" (Postgres + Redis feed) or "local"
	// (on-disk JSON documents, in-process feed).
	Backend string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Local backend: directory holding per-owner document files and the
	// SQLite database for user accounts.
	DataDir string

	// Redis (remote backend change feed)
	RedisAddr string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Asset storage
	AssetDir      string
	AssetBaseURL  string
	AssetMaxBytes int64
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Backend: getEnv("PORTAL_BACKEND", BackendRemote),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "dreamportal"),
		DBPassword: getEnv("DB_PASSWORD", "dreamportal"),
		DBName:     getEnv("DB_NAME", "dreamportal"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		DataDir: getEnv("DATA_DIR", "data"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		AssetDir:     getEnv("ASSET_DIR", "assets"),
		AssetBaseURL: getEnv("ASSET_BASE_URL", "/assets"),
	}

	if config.Backend != BackendRemote && config.Backend != BackendLocal {
		log.Printf("Warning: unknown PORTAL_BACKEND %q, falling back to remote\n", config.Backend)
		config.Backend = BackendRemote
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	// Upload cap; the browser client resizes photos to roughly this
	// budget before sending them.
	maxStr := getEnv("ASSET_MAX_BYTES", "5242880")
	maxBytes, err := strconv.ParseInt(maxStr, 10, 64)
	if err != nil || maxBytes <= 0 {
		log.Printf("Warning: invalid ASSET_MAX_BYTES value '%s', falling back to 5MiB\n", maxStr)
		maxBytes = 5 << 20
	}
	config.AssetMaxBytes = maxBytes

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
