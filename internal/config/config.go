package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config captures the runtime configuration for the Lienzo client.
type Config struct {
	APIBaseURL     string
	HTTPTimeout    time.Duration
	PageSize       int
	SessionBackend string
	SessionPath    string
	RedisAddr      string
	RedisPrefix    string
	RequestsPerMin int
	RequestBurst   int
	LogLevel       string
	UserCacheTTL   time.Duration
	NotifyInterval time.Duration
}

// Session store backends selectable through LIENZO_SESSION_BACKEND.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Load reads configuration from environment variables, applying sensible defaults
// for local use while allowing overrides through environment variables.
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL:     getString("LIENZO_API_URL", "https://api.lienzo.app/api/v1"),
		HTTPTimeout:    getDuration("LIENZO_HTTP_TIMEOUT", 30*time.Second),
		PageSize:       getInt("LIENZO_PAGE_SIZE", 10),
		SessionBackend: getString("LIENZO_SESSION_BACKEND", BackendFile),
		SessionPath:    getString("LIENZO_SESSION_PATH", defaultSessionPath()),
		RedisAddr:      getString("LIENZO_REDIS_ADDR", "localhost:6379"),
		RedisPrefix:    getString("LIENZO_REDIS_PREFIX", "lienzo:session"),
		RequestsPerMin: getInt("LIENZO_REQUESTS_PER_MIN", 120),
		RequestBurst:   getInt("LIENZO_REQUEST_BURST", 20),
		LogLevel:       getString("LIENZO_LOG_LEVEL", "info"),
		UserCacheTTL:   getDuration("LIENZO_USER_CACHE_TTL", 5*time.Minute),
		NotifyInterval: getDuration("LIENZO_NOTIFY_INTERVAL", 5*time.Minute),
	}

	return cfg, nil
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lienzo-session.json"
	}
	return filepath.Join(home, ".lienzo", "session.json")
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
