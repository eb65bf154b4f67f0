package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Feeds
	FeedTimeout      time.Duration `json:"feed_timeout"`
	FeedsConfigPath  string        `json:"feeds_config_path"`
	PlaceholderImage string        `json:"placeholder_image"`
	ContentWordLimit int           `json:"content_word_limit"`
	MaxConcurrency   int           `json:"max_concurrency"`

	// Cache configuration
	CacheBackend    string        `json:"cache_backend"`
	CacheTTL        time.Duration `json:"cache_ttl"`
	ProcessCacheTTL time.Duration `json:"process_cache_ttl"`
	RedisURL        string        `json:"redis_url"`
	RedisPrefix     string        `json:"redis_prefix"`

	// CacheFlushOnStart drops every key under RedisPrefix at startup.
	CacheFlushOnStart bool `json:"cache_flush_on_start"`

	// Database
	DBDriver    string `json:"db_driver"`
	DatabaseURL string `json:"database_url"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2AccountID string `json:"r2_account_id"`

	// AI Configuration
	LLMProvider        string        `json:"llm_provider"`
	LLMBaseURL         string        `json:"llm_base_url"`
	HFToken            string        `json:"hf_token"`
	AIApiKey           string        `json:"ai_api_key"`
	AIModel            string        `json:"ai_model"`
	AITimeout          time.Duration `json:"ai_timeout"`
	SummarizeOnProcess bool          `json:"summarize_on_process"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// Feeds
		FeedTimeout:      getEnvAsDuration("FEED_TIMEOUT", 10*time.Second),
		FeedsConfigPath:  getEnv("FEEDS_CONFIG_PATH", ""),
		PlaceholderImage: getEnv("NULL_IMAGES", ""),
		ContentWordLimit: getEnvAsInt("CONTENT_WORD_LIMIT", 150),
		MaxConcurrency:   getEnvAsInt("MAX_CONCURRENCY", 1),

		// Cache configuration
		CacheBackend:    getEnv("CACHE_BACKEND", "memory"),
		CacheTTL:        getEnvAsDuration("CACHE_TTL", 2*time.Hour),
		ProcessCacheTTL: getEnvAsDuration("PROCESS_CACHE_TTL", 15*time.Minute),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:     getEnv("REDIS_PREFIX", "khabar:"),

		CacheFlushOnStart: getEnvAsBool("CACHE_FLUSH_ON_START", false),

		// Database
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL: getEnv("DATABASE_URL", "file:khabar.db?_pragma=busy_timeout(5000)"),

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "newsapi"),
		R2AccountID: getEnv("CLOUDFLARE_ACCOUNT_ID", ""),

		// AI Configuration
		LLMProvider:        getEnv("LLM_PROVIDER", "openai"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://router.huggingface.co/v1"),
		HFToken:            getEnv("HF_TOKEN", ""),
		AIApiKey:           getEnv("AI_API_KEY", ""),
		AIModel:            getEnv("AI_MODEL", "openai/gpt-oss-20b:fireworks-ai"),
		AITimeout:          getEnvAsDuration("AI_TIMEOUT", 60*time.Second),
		SummarizeOnProcess: getEnvAsBool("SUMMARIZE_ON_PROCESS", false),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	switch c.LLMProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.CacheTTL <= 0 || c.ProcessCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.ContentWordLimit < 0 {
		return fmt.Errorf("CONTENT_WORD_LIMIT must not be negative")
	}
	if c.MaxConcurrency < 1 {
		c.MaxConcurrency = 1
	}
	return nil
}

// LLMKey returns the credential for the configured LLM provider.
func (c *Config) LLMKey() string {
	if c.LLMProvider == "gemini" {
		return c.AIApiKey
	}
	return c.HFToken
}

// ArchiveEnabled reports whether snapshot uploads to R2 are configured.
func (c *Config) ArchiveEnabled() bool {
	return c.R2AccessKey != "" && c.R2SecretKey != "" && (c.R2Endpoint != "" || c.R2AccountID != "")
}

// R2EndpointURL returns the S3-compatible endpoint, derived from the account
// id when R2_ENDPOINT is not set.
func (c *Config) R2EndpointURL() string {
	if c.R2Endpoint != "" {
		return c.R2Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
