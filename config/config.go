package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the satwatch service
type Config struct {
	// Logging
	LogLevel string
	LogFile  string

	// API
	ListenAddr   string
	RateLimitMax int
	CacheTTL     time.Duration

	// Polling
	PollInterval   time.Duration
	RequestTimeout time.Duration

	// Upstream sources
	BlockchainInfoURL     string
	BlockchainInfoEnabled bool
	MempoolSpaceURL       string
	MempoolSpaceEnabled   bool
	CoinGeckoURL          string
	PriceEnabled          bool

	// Database
	DataDir string

	// Outbound proxy
	ProxyEnabled bool
	ProxyAddr    string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		ListenAddr:   getEnv("LISTEN_ADDR", "0.0.0.0:8080"),
		RateLimitMax: getEnvInt("RATE_LIMIT_MAX", 100),
		CacheTTL:     getEnvDuration("CACHE_TTL", 5*time.Minute),

		PollInterval:   getEnvDuration("POLL_INTERVAL", 5*time.Minute),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		BlockchainInfoURL:     getEnv("BLOCKCHAIN_INFO_URL", ""),
		BlockchainInfoEnabled: getEnvBool("BLOCKCHAIN_INFO_ENABLED", true),
		MempoolSpaceURL:       getEnv("MEMPOOL_SPACE_URL", ""),
		MempoolSpaceEnabled:   getEnvBool("MEMPOOL_SPACE_ENABLED", true),
		CoinGeckoURL:          getEnv("COINGECKO_URL", ""),
		PriceEnabled:          getEnvBool("PRICE_ENABLED", true),

		DataDir: getEnv("DATA_DIR", "."),

		ProxyEnabled: getEnvBool("PROXY_ENABLED", false),
		ProxyAddr:    getEnv("PROXY_ADDR", "127.0.0.1:9050"),
	}
}

// getEnv gets an environment variable or returns default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as int or returns default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as bool or returns default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as duration or returns default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
