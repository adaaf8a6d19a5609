package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	DBConn    string
	LogLevel  string
	JWTSecret string

	LLMProvider    string
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	AnthropicKey   string
	AnthropicModel string
	LLMTimeout     time.Duration

	CurrencySymbol string
	CurrencyName   string

	AIRateLimit time.Duration
	AIRateBurst int

	DigestSchedule string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SenderEmail    string
}

// NewConfig loads configuration from a .env file (if any) and environment variables
func NewConfig() (*Config, error) {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBConn:         getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=finance sslmode=disable"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		LLMProvider:    getEnv("LLM_PROVIDER", "gateway"),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://ai.gateway.lovable.dev"),
		LLMAPIKey:      getEnv("LLM_API_KEY", ""),
		LLMModel:       getEnv("LLM_MODEL", "google/gemini-2.5-flash"),
		AnthropicKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel: getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₹"),
		CurrencyName:   getEnv("CURRENCY_NAME", "Indian Rupees"),
		DigestSchedule: getEnv("DIGEST_SCHEDULE", ""),
		SMTPHost:       getEnv("SMTP_HOST", "localhost"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "insights@example.com"),
	}

	var err error
	if cfg.LLMTimeout, err = time.ParseDuration(getEnv("LLM_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}
	if cfg.AIRateLimit, err = time.ParseDuration(getEnv("AI_RATE_LIMIT", "2s")); err != nil {
		return nil, fmt.Errorf("invalid AI_RATE_LIMIT: %w", err)
	}
	if cfg.AIRateBurst, err = strconv.Atoi(getEnv("AI_RATE_BURST", "5")); err != nil {
		return nil, fmt.Errorf("invalid AI_RATE_BURST: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBConn == "" {
		return fmt.Errorf("DB_CONN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.LLMProvider {
	case "gateway":
		if c.LLMAPIKey == "" {
			return fmt.Errorf("LLM_API_KEY is required for the gateway provider")
		}
	case "anthropic":
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.AIRateBurst < 1 {
		return fmt.Errorf("AI_RATE_BURST must be at least 1")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
