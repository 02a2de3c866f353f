package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	RedisAddr        string
	RedisPassword    string
	BotToken         string
	WebhookBaseURL   string
	WebhookSecret    string
	DirectoryBaseURL string
	DirectoryToken   string
	ServerPort       string
	PollTimeout      int
	LogLevel         string
}

func Load() *Config {
	// .env is optional, only used in development.
	_ = godotenv.Load()

	return &Config{
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBName:           getEnv("DB_NAME", "quizscores"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		BotToken:         getEnv("BOT_TOKEN", ""),
		WebhookBaseURL:   getEnv("WEBHOOK_BASE_URL", ""),
		WebhookSecret:    getEnv("WEBHOOK_SECRET", ""),
		DirectoryBaseURL: getEnv("DIRECTORY_BASE_URL", ""),
		DirectoryToken:   getEnv("DIRECTORY_TOKEN", ""),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		PollTimeout:      getEnvInt("POLL_TIMEOUT", 30),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}
