package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverFile     = "file"
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

type Config struct {
	APIBaseURL              string
	ConsoleHost             string
	ConsolePort             string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration
	APITimeout              time.Duration
	LoginTimeout            time.Duration
	RestoreTimeout          time.Duration
	APIRateLimitRPS         float64
	LoginRateLimitRPM       int
	CORSOrigins             []string
	StorageDriver           string
	StoragePath             string
	StorageKey              string
	StorageNamespace        string
	DatabaseURL             string
	DBMaxConns              int32
	DBMinConns              int32
	LogLevel                string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:              strings.TrimRight(getEnv("KIVA_API_BASE_URL", "http://localhost:8080/api"), "/"),
		ConsoleHost:             getEnv("CONSOLE_HOST", "127.0.0.1"),
		ConsolePort:             getEnv("CONSOLE_PORT", "3000"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),
		APITimeout:              getDuration("API_TIMEOUT", 15*time.Second),
		LoginTimeout:            getDuration("LOGIN_TIMEOUT", 15*time.Second),
		RestoreTimeout:          getDuration("RESTORE_TIMEOUT", 5*time.Second),
		APIRateLimitRPS:         getFloat("API_RATE_LIMIT_RPS", 0),
		LoginRateLimitRPM:       getInt("LOGIN_RATE_LIMIT_RPM", 10),
		CORSOrigins:             splitCSV(os.Getenv("CORS_ORIGINS")),
		StorageDriver:           strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverFile)),
		StoragePath:             getEnv("STORAGE_PATH", "./state/session.json"),
		StorageKey:              strings.TrimSpace(os.Getenv("STORAGE_KEY")),
		StorageNamespace:        strings.TrimSpace(os.Getenv("STORAGE_NAMESPACE")),
		DatabaseURL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:              int32(getInt("DB_MAX_CONNS", 4)),
		DBMinConns:              int32(getInt("DB_MIN_CONNS", 0)),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
	}

	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = cfg.ConsoleOrigins()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConsoleOrigins lists the origins the console itself is served from. A
// loopback or unspecified host also answers as localhost.
func (c *Config) ConsoleOrigins() []string {
	origins := []string{"http://" + net.JoinHostPort(c.ConsoleHost, c.ConsolePort)}

	if ip := net.ParseIP(c.ConsoleHost); ip != nil && (ip.IsLoopback() || ip.IsUnspecified()) {
		origins = append(origins, "http://"+net.JoinHostPort("localhost", c.ConsolePort))
	}

	return origins
}

func (c *Config) Validate() error {
	parsed, err := url.Parse(c.APIBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("KIVA_API_BASE_URL must be an absolute URL")
	}

	if c.ConsoleHost == "" {
		return fmt.Errorf("CONSOLE_HOST cannot be empty")
	}

	if c.ConsolePort == "" {
		return fmt.Errorf("CONSOLE_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}

	if c.LoginTimeout <= 0 {
		return fmt.Errorf("LOGIN_TIMEOUT must be positive")
	}

	if c.RestoreTimeout <= 0 {
		return fmt.Errorf("RESTORE_TIMEOUT must be positive")
	}

	if c.APIRateLimitRPS < 0 {
		return fmt.Errorf("API_RATE_LIMIT_RPS cannot be negative")
	}

	switch c.StorageDriver {
	case StorageDriverFile, StorageDriverSQLite:
		if strings.TrimSpace(c.StoragePath) == "" {
			return fmt.Errorf("STORAGE_PATH cannot be empty for the %s driver", c.StorageDriver)
		}
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		if c.DBMaxConns <= 0 {
			return fmt.Errorf("DB_MAX_CONNS must be positive")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
