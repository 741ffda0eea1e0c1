package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLM providers understood by the ingredient resolver.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderNone   = "none"
)

const (
	defaultDatabasePath = "data/planifia.db"
	defaultPort         = "8080"
	defaultGeminiModel  = "gemini-1.5-flash"
	defaultGroqModel    = "llama-3.3-70b-versatile"
	defaultLogLevel     = "info"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath string
	Port         string
	LogLevel     string
	Location     *time.Location

	// Session tokens are only issued by the server.
	SessionSecret string

	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	IngredientDictionaryPath string
	IngredientCachePath      string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		DatabasePath:             getEnv("DATABASE_PATH", defaultDatabasePath),
		Port:                     getEnv("PORT", defaultPort),
		LogLevel:                 getEnv("LOG_LEVEL", defaultLogLevel),
		SessionSecret:            os.Getenv("SESSION_SECRET"),
		GeminiAPIKey:             os.Getenv("GEMINI_API_KEY"),
		GeminiModel:              getEnv("GEMINI_MODEL", defaultGeminiModel),
		GroqAPIKey:               os.Getenv("GROQ_API_KEY"),
		GroqModel:                getEnv("GROQ_MODEL", defaultGroqModel),
		IngredientDictionaryPath: os.Getenv("INGREDIENT_DICTIONARY_PATH"),
		IngredientCachePath:      os.Getenv("INGREDIENT_CACHE_PATH"),
		TelegramBotToken:         os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:       os.Getenv("TELEGRAM_WEBHOOK_URL"),
	}

	loc, err := loadLocation(os.Getenv("TIMEZONE"))
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	provider, err := resolveProvider(os.Getenv("LLM_PROVIDER"), cfg.GeminiAPIKey, cfg.GroqAPIKey)
	if err != nil {
		return nil, err
	}
	cfg.LLMProvider = provider

	ids, err := parseUserIDs(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.TelegramAllowedUserIDs = ids

	if cfg.TelegramBotToken != "" && cfg.TelegramWebhookURL == "" {
		return nil, fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}

	return cfg, nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable not set")
	}
	return nil
}

// TelegramEnabled reports whether the bot front-end should be started.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

func resolveProvider(requested, geminiKey, groqKey string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "":
		if geminiKey != "" {
			return ProviderGemini, nil
		}
		if groqKey != "" {
			return ProviderGroq, nil
		}
		return ProviderNone, nil
	case ProviderGemini:
		if geminiKey == "" {
			return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
		return ProviderGemini, nil
	case ProviderGroq:
		if groqKey == "" {
			return "", fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
		return ProviderGroq, nil
	case ProviderNone:
		return ProviderNone, nil
	default:
		return "", fmt.Errorf("unknown LLM_PROVIDER %q", requested)
	}
}

func parseUserIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
