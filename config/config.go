package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DebugMode   bool

	// Database
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// OpenAI classifier
	OpenAIAPIKey   string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeout     time.Duration
	LLMMaxRetries  int
	LLMRetryDelay  time.Duration

	// Reply synthesis
	ConfidenceThreshold        float64
	ReplyProductiveConfident   string
	ReplyProductiveUncertain   string
	ReplyUnproductiveConfident string
	ReplyUnproductiveUncertain string

	// Normalization resources (empty means embedded defaults)
	StopwordsPath string
	LemmasPath    string

	// Result cache
	CacheResultTTL time.Duration

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "4000"),
		Environment: getEnv("ENV", "development"),
		DebugMode:   getEnvBool("DEBUG_MODE", false),

		// Database
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "quick_email"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// OpenAI classifier
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 256),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.3),
		LLMTimeout:     time.Duration(getEnvInt("LLM_TIMEOUT_SEC", 30)) * time.Second,
		LLMMaxRetries:  getEnvInt("LLM_MAX_RETRIES", 1),
		LLMRetryDelay:  time.Duration(getEnvInt("LLM_RETRY_DELAY_MS", 500)) * time.Millisecond,

		// Reply synthesis
		ConfidenceThreshold:        getEnvFloat("CONFIDENCE_THRESHOLD", 0.5),
		ReplyProductiveConfident:   getEnv("REPLY_PRODUCTIVE_CONFIDENT", ""),
		ReplyProductiveUncertain:   getEnv("REPLY_PRODUCTIVE_UNCERTAIN", ""),
		ReplyUnproductiveConfident: getEnv("REPLY_UNPRODUCTIVE_CONFIDENT", ""),
		ReplyUnproductiveUncertain: getEnv("REPLY_UNPRODUCTIVE_UNCERTAIN", ""),

		// Normalization resources
		StopwordsPath: getEnv("STOPWORDS_PATH", ""),
		LemmasPath:    getEnv("LEMMAS_PATH", ""),

		// Result cache
		CacheResultTTL: time.Duration(getEnvInt("CACHE_RESULT_TTL_MIN", 60)) * time.Minute,

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
