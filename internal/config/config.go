// ABOUTME: Configuration loader for the console
// ABOUTME: Loads settings from an optional .env file and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/changexio/changex-console/internal/session"
)

// Session backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	// API
	APIURL             string
	HTTPTimeout        time.Duration
	InsecureSkipVerify bool   // explicit opt-in for insecure connections
	AllProxy           string // ssh+socks5://user@host:port?private-key=path, optional

	// Session storage
	SessionBackend string // file, memory, redis (default: file)
	ConfigDir      string

	// Redis (only when SessionBackend is redis)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Lists
	PageSize int
}

// Load reads configuration. A .env file in the working directory is applied
// first when present; real environment variables win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	} else if err != nil {
		slog.Debug("No .env file found, using process environment")
	}

	cfg := &Config{
		APIURL:             NormalizeURL(os.Getenv("CHANGEX_API_URL")),
		HTTPTimeout:        time.Duration(getEnvInt("CHANGEX_HTTP_TIMEOUT", 30)) * time.Second,
		InsecureSkipVerify: getEnvBool("CHANGEX_INSECURE_SKIP_VERIFY", false),
		AllProxy:           os.Getenv("CHANGEX_ALL_PROXY"),

		SessionBackend: strings.ToLower(getEnv("CHANGEX_SESSION_BACKEND", BackendFile)),
		ConfigDir:      getEnv("CHANGEX_CONFIG_DIR", session.DefaultConfigDir()),

		RedisAddr:     getEnv("CHANGEX_REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("CHANGEX_REDIS_PASSWORD"),
		RedisDB:       getEnvInt("CHANGEX_REDIS_DB", 0),
		RedisPrefix:   getEnv("CHANGEX_REDIS_PREFIX", "changex:"),

		PageSize: getEnvInt("CHANGEX_PAGE_SIZE", 20),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. The API URL is not required here because
// commands may supply it with a flag.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case BackendFile, BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("CHANGEX_SESSION_BACKEND must be one of file, memory, redis, got %q", c.SessionBackend)
	}
	if c.HTTPTimeout < time.Second || c.HTTPTimeout > 10*time.Minute {
		return fmt.Errorf("CHANGEX_HTTP_TIMEOUT must be between 1 and 600 seconds, got %s", c.HTTPTimeout)
	}
	if c.PageSize < 1 || c.PageSize > 500 {
		return fmt.Errorf("CHANGEX_PAGE_SIZE must be between 1 and 500, got %d", c.PageSize)
	}
	if c.AllProxy != "" && !strings.HasPrefix(c.AllProxy, "ssh+socks5://") {
		return fmt.Errorf("CHANGEX_ALL_PROXY must be an ssh+socks5:// URL")
	}
	return nil
}

// NewSessionBackend builds the configured token storage backend.
func (c *Config) NewSessionBackend() (session.Backend, error) {
	switch c.SessionBackend {
	case BackendMemory:
		return session.NewMemoryBackend(), nil
	case BackendRedis:
		rb, err := session.NewRedisBackend(session.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return rb, nil
	default:
		return session.NewFileBackend(c.ConfigDir), nil
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
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// NormalizeURL adds a missing scheme and drops trailing slashes.
func NormalizeURL(url string) string {
	return strings.TrimRight(ensureScheme(strings.TrimSpace(url)), "/")
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
