package config

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	Port     string
	PodID    string
	LogLevel string
	LogDir   string
	APIToken string

	GroqAPIKey     string
	LLMBaseURL     string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeoutMS   int64

	EventStreamEnabled bool
	RedisURL           string
	EventConsumerGroup string
	EventBufferSize    int
}

func Load() *Config {
	config := &Config{
		Port:     getEnv("PORT", "8000"),
		PodID:    getEnv("POD_ID", generatePodID()),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogDir:   getEnv("LOG_DIR", ""),
		APIToken: getEnv("API_TOKEN", ""),

		GroqAPIKey:     getEnv("GROQ_API_KEY", ""),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:       getEnv("LLM_MODEL", "qwen-2.5-32b"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 150),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeoutMS:   getEnvInt64("LLM_TIMEOUT_MS", 30000),

		EventStreamEnabled: getEnvBool("EVENT_STREAM_ENABLED", false),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		EventConsumerGroup: getEnv("EVENT_CONSUMER_GROUP", "simulation-event-processors"),
		EventBufferSize:    getEnvInt("EVENT_BUFFER_SIZE", 256),
	}

	return config
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutMS) * time.Millisecond
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
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

func generatePodID() string {
	hostname, err := os.Hostname()
	if err != nil {
		return uuid.New().String()
	}
	return hostname + "-" + uuid.New().String()[:8]
}
