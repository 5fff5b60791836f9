package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port           string
	BaseURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// Path is the database file used by the sqlite driver.
	Path string
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	RateLimit int
	Window    time.Duration
}

// Enabled reports whether a Redis host is configured. Redis is optional.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type ClassifierConfig struct {
	URL               string
	MaxAttempts       int
	AttemptTimeout    time.Duration
	RetryBudget       time.Duration
	BackoffBase       time.Duration
	BackoffMax        time.Duration
	RatioScale        string
	KeepAliveInterval time.Duration
}

type AdvisorConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

type HistoryConfig struct {
	CacheTTL   time.Duration
	TrendLimit int
}

type Config struct {
	Server     ServerConfig
	DB         DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Classifier ClassifierConfig
	Advisor    AdvisorConfig
	History    HistoryConfig
	Env        string
}

func LoadConfig() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"https://focus-analyzer-ai-6.onrender.com",
			}),
		},
		DB: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "focus"),
			Password: getEnv("DB_PASS", "focus"),
			DBName:   getEnv("DB_NAME", "focus_sessions"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "focus.db"),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", ""),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			RateLimit: getEnvInt("PREDICT_RATE_LIMIT", 30),
			Window:    getEnvDuration("PREDICT_RATE_WINDOW", time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "SECRET"),
			TokenTTL:  getEnvDuration("JWT_TTL", 72*time.Hour),
		},
		Classifier: ClassifierConfig{
			URL:               getEnv("CLASSIFIER_URL", "https://focus-analyzer-ai-3.onrender.com/predict"),
			MaxAttempts:       getEnvInt("CLASSIFIER_MAX_ATTEMPTS", 3),
			AttemptTimeout:    getEnvDuration("CLASSIFIER_ATTEMPT_TIMEOUT", 30*time.Second),
			RetryBudget:       getEnvDuration("CLASSIFIER_RETRY_BUDGET", 90*time.Second),
			BackoffBase:       getEnvDuration("CLASSIFIER_BACKOFF_BASE", time.Second),
			BackoffMax:        getEnvDuration("CLASSIFIER_BACKOFF_MAX", 8*time.Second),
			RatioScale:        getEnv("CLASSIFIER_RATIO_SCALE", "fraction"),
			KeepAliveInterval: getEnvDuration("CLASSIFIER_KEEPALIVE_INTERVAL", 10*time.Minute),
		},
		Advisor: AdvisorConfig{
			Provider: getEnv("ADVISOR_PROVIDER", "gemini"),
			APIKey:   getEnv("ADVISOR_API_KEY", os.Getenv("GEMINI_API_KEY")),
			Model:    getEnv("ADVISOR_MODEL", ""),
			BaseURL:  getEnv("ADVISOR_BASE_URL", ""),
			Timeout:  getEnvDuration("ADVISOR_TIMEOUT", 15*time.Second),
		},
		History: HistoryConfig{
			CacheTTL:   getEnvDuration("HISTORY_CACHE_TTL", 5*time.Minute),
			TrendLimit: getEnvInt("HISTORY_TREND_LIMIT", 20),
		},
		Env: getEnv("ENV", "prod"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: %s=%q is not an integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: %s=%q is not a duration, using %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
