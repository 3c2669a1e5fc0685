package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Env string // development, staging, production

	// Logging
	LogLevel  string
	LogFormat string

	HTTP      HTTPConfig
	Discovery DiscoveryConfig
	Analysis  AnalysisConfig
	Recommend RecommendConfig
	Schedule  ScheduleConfig
}

// HTTPConfig holds shared HTTP client configuration.
type HTTPConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	RequestsPerSec float64 // outbound rate limit toward market data endpoints
}

// DiscoveryConfig holds candidate discovery configuration.
type DiscoveryConfig struct {
	FetchCount   int           // rows taken per ranking
	CacheTTL     time.Duration // ranking cache validity window
	MinPrice     float64
	MaxPrice     float64
	MinMarketCap float64
	MinListDays  int
}

// AnalysisConfig holds per-stock analysis configuration.
type AnalysisConfig struct {
	HistoryDays    int // daily bars requested per stock
	MinHistoryDays int // minimum bars required to analyze
	MinScore       int // composite score cutoff
	TrendWeight    float64
	HeatWeight     float64
}

// RecommendConfig holds scoring orchestrator configuration.
type RecommendConfig struct {
	MaxConcurrent int
	TaskTimeout   time.Duration
	TopN          int
}

// ScheduleConfig holds the daily run schedule.
type ScheduleConfig struct {
	Cron      string // robfig/cron expression, seconds field included
	OutputDir string // where daily reports are written
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		HTTP: HTTPConfig{
			Timeout:        getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			MaxRetries:     getEnvAsInt("HTTP_MAX_RETRIES", 3),
			RetryDelay:     getEnvAsDuration("HTTP_RETRY_DELAY", "1s"),
			RequestsPerSec: getEnvAsFloat("HTTP_REQUESTS_PER_SEC", 5),
		},

		Discovery: DiscoveryConfig{
			FetchCount:   getEnvAsInt("DISCOVERY_FETCH_COUNT", 30),
			CacheTTL:     getEnvAsDuration("DISCOVERY_CACHE_TTL", "30m"),
			MinPrice:     getEnvAsFloat("FILTER_MIN_PRICE", 3.0),
			MaxPrice:     getEnvAsFloat("FILTER_MAX_PRICE", 300.0),
			MinMarketCap: getEnvAsFloat("FILTER_MIN_MARKET_CAP", 5e9),
			MinListDays:  getEnvAsInt("FILTER_MIN_LIST_DAYS", 90),
		},

		Analysis: AnalysisConfig{
			HistoryDays:    getEnvAsInt("ANALYSIS_HISTORY_DAYS", 60),
			MinHistoryDays: getEnvAsInt("ANALYSIS_MIN_HISTORY_DAYS", 30),
			MinScore:       getEnvAsInt("ANALYSIS_MIN_SCORE", 60),
			TrendWeight:    getEnvAsFloat("SCORE_TREND_WEIGHT", 0.6),
			HeatWeight:     getEnvAsFloat("SCORE_HEAT_WEIGHT", 0.4),
		},

		Recommend: RecommendConfig{
			MaxConcurrent: getEnvAsInt("RECOMMEND_MAX_CONCURRENT", 10),
			TaskTimeout:   getEnvAsDuration("RECOMMEND_TASK_TIMEOUT", "60s"),
			TopN:          getEnvAsInt("RECOMMEND_TOP_N", 5),
		},

		Schedule: ScheduleConfig{
			// 17:30 local time on weekdays, after the market close
			Cron:      getEnv("SCHEDULE_CRON", "0 30 17 * * MON-FRI"),
			OutputDir: getEnv("SCHEDULE_OUTPUT_DIR", "reports"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks that configured values are usable.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Discovery.FetchCount <= 0 {
		return fmt.Errorf("DISCOVERY_FETCH_COUNT must be positive")
	}

	if c.Discovery.MinPrice > c.Discovery.MaxPrice {
		return fmt.Errorf("FILTER_MIN_PRICE must not exceed FILTER_MAX_PRICE")
	}

	if c.Analysis.MinHistoryDays > c.Analysis.HistoryDays {
		return fmt.Errorf("ANALYSIS_MIN_HISTORY_DAYS must not exceed ANALYSIS_HISTORY_DAYS")
	}

	if c.Analysis.MinScore < 0 || c.Analysis.MinScore > 100 {
		return fmt.Errorf("ANALYSIS_MIN_SCORE must be in [0,100]")
	}

	if c.Recommend.MaxConcurrent <= 0 {
		return fmt.Errorf("RECOMMEND_MAX_CONCURRENT must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
