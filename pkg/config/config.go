package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultScreenerURL is the Finviz screener page used when no url is supplied
// (mid-cap and up, P/E under 20, ROE over 15%, sorted by market cap).
const DefaultScreenerURL = "https://finviz.com/screener.ashx?v=111&f=cap_midover,fa_pe_u20,fa_roe_o15&o=-marketcap"

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Redis (page cache)
	Redis RedisConfig

	// Outbound HTTP
	HTTP HTTPConfig

	// Vendor pages
	Finviz    FinvizConfig
	Zacks     ZacksConfig
	GuruFocus GuruFocusConfig

	// Screening
	Screen ScreenConfig

	// Serverless entry: "screen" (default) or "tickers"
	FunctionMode string

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	CacheTTL time.Duration
}

// HTTPConfig holds outbound HTTP client configuration
type HTTPConfig struct {
	Timeout    time.Duration
	UserAgent  string
	MaxRetries int           // 0 = 재시도 없음
	RetryDelay time.Duration // first backoff, doubled per attempt
}

// FinvizConfig holds Finviz screener configuration
type FinvizConfig struct {
	ScreenerURL string
}

// ZacksConfig holds Zacks rank page configuration
type ZacksConfig struct {
	BaseURL string
}

// GuruFocusConfig holds GuruFocus DCF page configuration
type GuruFocusConfig struct {
	BaseURL string
}

// ScreenConfig holds screening thresholds and worker settings
type ScreenConfig struct {
	Concurrency       int
	MinPredictability float64 // predictability > MinPredictability
	MinMarginOfSafety float64 // marginOfSafety >= MinMarginOfSafety
	Schedule          string  // cron (with seconds)
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit .env path (empty = search default paths).
// Variables already set in the environment win over the file.
func LoadFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		// Try multiple paths for .env file
		loadEnvFile()
	}

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			CacheTTL: getEnvAsDuration("PAGE_CACHE_TTL", "10m"),
		},

		HTTP: HTTPConfig{
			Timeout:    getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			UserAgent:  getEnv("HTTP_USER_AGENT", "Mozilla/5.0"),
			MaxRetries: getEnvAsInt("HTTP_MAX_RETRIES", 0),
			RetryDelay: getEnvAsDuration("HTTP_RETRY_DELAY", "1s"),
		},

		Finviz: FinvizConfig{
			ScreenerURL: getEnv("FINVIZ_SCREENER_URL", DefaultScreenerURL),
		},

		Zacks: ZacksConfig{
			BaseURL: getEnv("ZACKS_BASE_URL", "https://www.zacks.com"),
		},

		GuruFocus: GuruFocusConfig{
			BaseURL: getEnv("GURUFOCUS_BASE_URL", "https://www.gurufocus.com"),
		},

		Screen: ScreenConfig{
			Concurrency:       getEnvAsInt("SCREEN_CONCURRENCY", 4),
			MinPredictability: getEnvAsFloat("SCREEN_MIN_PREDICTABILITY", 1),
			MinMarginOfSafety: getEnvAsFloat("SCREEN_MIN_MARGIN_OF_SAFETY", 25),
			Schedule:          getEnv("SCREEN_SCHEDULE", "0 30 22 * * 1-5"),
		},

		FunctionMode: getEnv("FUNCTION_MODE", "screen"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration Load would produce with an empty
// environment. Used by the serverless entry point and tests.
func Default() *Config {
	return &Config{
		Port: "8080",
		Env:  "development",
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			CacheTTL: 10 * time.Minute,
		},
		HTTP: HTTPConfig{
			Timeout:    30 * time.Second,
			UserAgent:  "Mozilla/5.0",
			RetryDelay: 1 * time.Second,
		},
		Finviz:    FinvizConfig{ScreenerURL: DefaultScreenerURL},
		Zacks:     ZacksConfig{BaseURL: "https://www.zacks.com"},
		GuruFocus: GuruFocusConfig{BaseURL: "https://www.gurufocus.com"},
		Screen: ScreenConfig{
			Concurrency:       4,
			MinPredictability: 1,
			MinMarginOfSafety: 25,
			Schedule:          "0 30 22 * * 1-5",
		},
		FunctionMode: "screen",
		LogLevel:     "info",
		LogFormat:    "json",
	}
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Screen.Concurrency < 1 {
		return fmt.Errorf("SCREEN_CONCURRENCY must be >= 1, got %d", c.Screen.Concurrency)
	}

	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("HTTP_MAX_RETRIES must be >= 0, got %d", c.HTTP.MaxRetries)
	}

	for name, raw := range map[string]string{
		"FINVIZ_SCREENER_URL": c.Finviz.ScreenerURL,
		"ZACKS_BASE_URL":      c.Zacks.BaseURL,
		"GURUFOCUS_BASE_URL":  c.GuruFocus.BaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s is not an absolute URL: %q", name, raw)
		}
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
