package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	EventsNone  = "none"
	EventsRedis = "redis"
	EventsNATS  = "nats"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL   string `env:"DATABASE_URL"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string        `env:"REDIS_PASSWORD"`
	RedisDB   int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Events Config
	EventsDriver string `env:"EVENTS_DRIVER" envDefault:"redis"`
	NATSURL      string `env:"NATS_URL" envDefault:"nats://localhost:4222"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Dispatch Config
	CodePrefix                string        `env:"CODE_PREFIX" envDefault:"EMT"`
	DefaultSearchRadiusMeters float64       `env:"DEFAULT_SEARCH_RADIUS_METERS" envDefault:"5000"`
	DefaultCandidateLimit     int           `env:"DEFAULT_CANDIDATE_LIMIT" envDefault:"10"`
	LocationMaxAge            time.Duration `env:"LOCATION_MAX_AGE" envDefault:"15m"`

	// Store Config
	StoreTimeout        time.Duration `env:"STORE_TIMEOUT" envDefault:"3s"`
	StoreMaxRetries     int           `env:"STORE_MAX_RETRIES" envDefault:"3"`
	StoreRetryBaseDelay time.Duration `env:"STORE_RETRY_BASE_DELAY" envDefault:"50ms"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`

	// Разрешенные источники CORS, "*" - любые
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		StorageDriver:             StoragePostgres,
		HTTPPort:                  "8080",
		LogLevel:                  "info",
		RedisAddr:                 "localhost:6379",
		CacheTTL:                  5 * time.Minute,
		EventsDriver:              EventsRedis,
		NATSURL:                   "nats://localhost:4222",
		WebhookTimeout:            5 * time.Second,
		WebhookMaxRetries:         3,
		WebhookBaseDelay:          time.Second,
		CodePrefix:                "EMT",
		DefaultSearchRadiusMeters: 5000,
		DefaultCandidateLimit:     10,
		LocationMaxAge:            15 * time.Minute,
		StoreTimeout:              3 * time.Second,
		StoreMaxRetries:           3,
		StoreRetryBaseDelay:       50 * time.Millisecond,
		CORSAllowedOrigins:        []string{"*"},
	}
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	d := Default()
	cfg := &Config{
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		StorageDriver:             strings.ToLower(getEnv("STORAGE_DRIVER", d.StorageDriver)),
		HTTPPort:                  getEnv("HTTP_PORT", d.HTTPPort),
		LogLevel:                  getEnv("LOG_LEVEL", d.LogLevel),
		RedisAddr:                 getEnv("REDIS_ADDR", d.RedisAddr),
		RedisPass:                 os.Getenv("REDIS_PASSWORD"),
		RedisDB:                   getEnvAsInt("REDIS_DB", 0),
		CacheTTL:                  getEnvAsDuration("CACHE_TTL", d.CacheTTL),
		EventsDriver:              strings.ToLower(getEnv("EVENTS_DRIVER", d.EventsDriver)),
		NATSURL:                   getEnv("NATS_URL", d.NATSURL),
		WebhookURL:                os.Getenv("WEBHOOK_URL"),
		WebhookSecret:             os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:            getEnvAsDuration("WEBHOOK_TIMEOUT", d.WebhookTimeout),
		WebhookMaxRetries:         getEnvAsInt("WEBHOOK_MAX_RETRIES", d.WebhookMaxRetries),
		WebhookBaseDelay:          getEnvAsDuration("WEBHOOK_BASE_DELAY", d.WebhookBaseDelay),
		CodePrefix:                getEnv("CODE_PREFIX", d.CodePrefix),
		DefaultSearchRadiusMeters: getEnvAsFloat("DEFAULT_SEARCH_RADIUS_METERS", d.DefaultSearchRadiusMeters),
		DefaultCandidateLimit:     getEnvAsInt("DEFAULT_CANDIDATE_LIMIT", d.DefaultCandidateLimit),
		LocationMaxAge:            getEnvAsDuration("LOCATION_MAX_AGE", d.LocationMaxAge),
		StoreTimeout:              getEnvAsDuration("STORE_TIMEOUT", d.StoreTimeout),
		StoreMaxRetries:           getEnvAsInt("STORE_MAX_RETRIES", d.StoreMaxRetries),
		StoreRetryBaseDelay:       getEnvAsDuration("STORE_RETRY_BASE_DELAY", d.StoreRetryBaseDelay),
	}

	// Загрузка API ключей
	cfg.APIKeys = getEnvAsList("API_KEYS", nil)
	cfg.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", d.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.EventsDriver {
	case EventsNone, EventsRedis, EventsNATS:
	default:
		return fmt.Errorf("unknown EVENTS_DRIVER %q", c.EventsDriver)
	}

	if c.DefaultSearchRadiusMeters <= 0 {
		return fmt.Errorf("DEFAULT_SEARCH_RADIUS_METERS must be positive")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.StoreMaxRetries < 1 {
		return fmt.Errorf("STORE_MAX_RETRIES must be at least 1")
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList разбирает список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
