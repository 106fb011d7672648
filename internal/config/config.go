package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// BackendConfig holds the remote storefront backend settings
type BackendConfig struct {
	Addrs           []string
	Timeout         time.Duration
	MaxFailures     int
	OpenTimeout     time.Duration
	LoginRetryDelay time.Duration
}

// RedisConfig holds the optional shared query cache settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config holds the storefront configuration
type Config struct {
	ServiceName     string
	Environment     string
	LogLevel        string
	HTTPPort        string
	OpsPort         string
	JaegerEndpoint  string
	InitialFragment string
	CORSOrigins     string
	CacheTTL        time.Duration
	RateLimit       int
	RateWindow      time.Duration
	KafkaBrokers    []string
	Backend         BackendConfig
	Redis           RedisConfig
}

// IsDevelopment reports whether the console log writer should be used
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads an optional .env file at path, then the environment
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{
		ServiceName:     getEnv("OTEL_SERVICE_NAME", "furniture-storefront"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HTTPPort:        getEnv("HTTP_PORT", "8000"),
		OpsPort:         getEnv("OPS_PORT", "9100"),
		JaegerEndpoint:  getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		InitialFragment: getEnv("INITIAL_FRAGMENT", ""),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "*"),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
	}

	var err error
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", 300); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	cfg.Backend.Addrs = splitList(getEnv("BACKEND_ADDRS", "localhost:9090"))
	if len(cfg.Backend.Addrs) == 0 {
		return nil, errors.New("BACKEND_ADDRS is required")
	}
	if cfg.Backend.Timeout, err = getDuration("BACKEND_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Backend.OpenTimeout, err = getDuration("BACKEND_BREAKER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Backend.MaxFailures, err = getInt("BACKEND_BREAKER_FAILURES", 5); err != nil {
		return nil, err
	}
	if cfg.Backend.LoginRetryDelay, err = getDuration("LOGIN_RETRY_DELAY", 300*time.Millisecond); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
