package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Telegram
	BotToken string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Application
	AppEnv   string
	LogLevel string

	// Rate Limiting
	RateLimitPerUser int

	// Quiz
	MinQuizSize      int
	MaxQuizSize      int
	RatingLimit      int
	LeaderboardLimit int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		BotToken:   getEnv("BOT_TOKEN", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "quizbot"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "quizbot_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RateLimitPerUser: getEnvInt("RATE_LIMIT_PER_USER", 20),

		MinQuizSize:      getEnvInt("MIN_QUIZ_SIZE", 2),
		MaxQuizSize:      getEnvInt("MAX_QUIZ_SIZE", 50),
		RatingLimit:      getEnvInt("RATING_LIMIT", 10),
		LeaderboardLimit: getEnvInt("LEADERBOARD_LIMIT", 50),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.MinQuizSize < 2 {
		return fmt.Errorf("MIN_QUIZ_SIZE must be at least 2")
	}
	if c.MaxQuizSize < c.MinQuizSize {
		return fmt.Errorf("MAX_QUIZ_SIZE must be >= MIN_QUIZ_SIZE")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}

	if c.DBSSLMode != "require" {
		return fmt.Errorf("DB_SSLMODE must be 'require' in production")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// QuizSizeChoices returns the question counts offered on the size keyboard.
func (c *Config) QuizSizeChoices() []int {
	sizes := []int{c.MinQuizSize}
	for s := 5; s <= c.MaxQuizSize; s += 5 {
		if s > c.MinQuizSize {
			sizes = append(sizes, s)
		}
	}
	return sizes
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
