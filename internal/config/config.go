package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Recognition RecognitionConfig
	Worker      WorkerConfig
	Upload      UploadConfig
}

type ServerConfig struct {
	Host string
	Port int
	// Per-tenant request ceiling on the intake API.
	RateLimitRPS   float64
	RateLimitBurst int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	SupabaseURL string
	SupabaseKey string
	Bucket      string
}

type RecognitionConfig struct {
	Provider     string // "openai", "anthropic", or "local"
	Model        string
	OpenAIKey    string
	AnthropicKey string
	// CostPerPage is the billable rate per recognized page, keyed by
	// provider name. Rates feed the usage ledger, never pipeline logic.
	CostPerPage map[string]float64
}

type WorkerConfig struct {
	Concurrency     int
	MaxJobsPerSec   float64
	MaxRetry        int
	RetryBaseDelay  time.Duration
	CompletedMaxAge time.Duration
}

type UploadConfig struct {
	MaxBytes int64
}

func Load() (*Config, error) {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	rateLimitRPS, err := getEnvFloat("API_RATE_LIMIT_RPS", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid API_RATE_LIMIT_RPS: %w", err)
	}

	rateLimitBurst, err := getEnvInt("API_RATE_LIMIT_BURST", 200)
	if err != nil {
		return nil, fmt.Errorf("invalid API_RATE_LIMIT_BURST: %w", err)
	}

	maxConns, err := getEnvInt("DB_MAX_CONNS", 20)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	concurrency, err := getEnvInt("WORKER_CONCURRENCY", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}

	maxJobsPerSec, err := getEnvFloat("WORKER_MAX_JOBS_PER_SEC", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_MAX_JOBS_PER_SEC: %w", err)
	}

	maxRetry, err := getEnvInt("WORKER_MAX_RETRY", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_MAX_RETRY: %w", err)
	}

	retryDelayMS, err := getEnvInt("WORKER_RETRY_BASE_DELAY_MS", 2000)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_RETRY_BASE_DELAY_MS: %w", err)
	}

	maxUploadBytes, err := getEnvInt("UPLOAD_MAX_BYTES", 50*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES: %w", err)
	}

	costPerPage, err := parseCostPerPage(getEnv("RECOGNITION_COST_PER_PAGE", "openai=0.01,anthropic=0.01,local=0"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECOGNITION_COST_PER_PAGE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			RateLimitRPS:   rateLimitRPS,
			RateLimitBurst: rateLimitBurst,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Storage: StorageConfig{
			SupabaseURL: getEnv("SUPABASE_URL", ""),
			SupabaseKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:      getEnv("STORAGE_BUCKET", "documents"),
		},
		Recognition: RecognitionConfig{
			Provider:     getEnv("RECOGNITION_PROVIDER", "openai"),
			Model:        getEnv("RECOGNITION_MODEL", ""),
			OpenAIKey:    getEnv("OPENAI_API_KEY", ""),
			AnthropicKey: getEnv("ANTHROPIC_API_KEY", ""),
			CostPerPage:  costPerPage,
		},
		Worker: WorkerConfig{
			Concurrency:     concurrency,
			MaxJobsPerSec:   maxJobsPerSec,
			MaxRetry:        maxRetry,
			RetryBaseDelay:  time.Duration(retryDelayMS) * time.Millisecond,
			CompletedMaxAge: 24 * time.Hour,
		},
		Upload: UploadConfig{
			MaxBytes: int64(maxUploadBytes),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Storage.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	return nil
}

// parseCostPerPage parses "provider=rate,provider=rate" pairs.
func parseCostPerPage(s string) (map[string]float64, error) {
	rates := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed entry %q", pair)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("rate for %q: %w", name, err)
		}
		rates[strings.TrimSpace(name)] = rate
	}
	return rates, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
