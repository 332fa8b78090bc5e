package configs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

const devSessionSecret = "dev-session-secret-change-in-production"

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Gemini   GeminiConfig
	Database DatabaseConfig
	Session  SessionConfig
	Upload   UploadConfig
	History  HistoryConfig
	Telegram TelegramConfig
	Timezone string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// GeminiConfig holds the inference service configuration
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string // empty uses the public endpoint
	Timeout time.Duration
}

// DatabaseConfig holds database configuration. An empty URL keeps history in memory.
type DatabaseConfig struct {
	URL string
}

// SessionConfig holds browser session configuration
type SessionConfig struct {
	Secret  string
	IdleTTL time.Duration
}

// UploadConfig holds upload limits
type UploadConfig struct {
	MaxBytes int64
}

// HistoryConfig holds analysis history retention
type HistoryConfig struct {
	RetentionDays int
	PurgeCron     string // six fields, seconds first
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken      string
	ChatID        string
	MinConfidence int
}

// IsProduction reports whether GO_ENV is production
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Retention returns the history retention as a duration, zero keeps everything
func (h HistoryConfig) Retention() time.Duration {
	return time.Duration(h.RetentionDays) * 24 * time.Hour
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	p := &envParser{}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", ""),
			Timeout: p.duration("GEMINI_TIMEOUT", 90*time.Second),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Session: SessionConfig{
			Secret:  getEnv("SESSION_SECRET", ""),
			IdleTTL: p.duration("SESSION_IDLE_TTL", 30*time.Minute),
		},
		Upload: UploadConfig{
			MaxBytes: int64(p.int("UPLOAD_MAX_BYTES", 10<<20)),
		},
		History: HistoryConfig{
			RetentionDays: p.int("HISTORY_RETENTION_DAYS", 30),
			PurgeCron:     getEnv("HISTORY_PURGE_CRON", "0 30 3 * * *"),
		},
		Telegram: TelegramConfig{
			BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:        getEnv("TELEGRAM_CHAT_ID", ""),
			MinConfidence: p.int("TELEGRAM_MIN_CONFIDENCE", 70),
		},
		Timezone: getEnv("TZ", "UTC"),
	}

	if cfg.Session.Secret == "" && !cfg.IsProduction() {
		log.Println("[WARN] SESSION_SECRET not set, using development secret")
		cfg.Session.Secret = devSessionSecret
	}

	if err := cfg.validate(p.errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadGemini loads only the inference settings, for tools that do not serve HTTP
func LoadGemini() (GeminiConfig, error) {
	p := &envParser{}
	cfg := GeminiConfig{
		APIKey:  getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BaseURL: getEnv("GEMINI_BASE_URL", ""),
		Timeout: p.duration("GEMINI_TIMEOUT", 90*time.Second),
	}

	errs := p.errs
	if strings.TrimSpace(cfg.APIKey) == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if len(errs) > 0 {
		return GeminiConfig{}, fmt.Errorf("configuration validation failed:\n%w", errors.Join(errs...))
	}
	return cfg, nil
}

// validate checks the loaded values, reporting every problem at once
func (c *Config) validate(errs []error) error {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if c.Gemini.Model == "" {
		errs = append(errs, errors.New("GEMINI_MODEL must not be empty"))
	}
	if c.Gemini.Timeout <= 0 {
		errs = append(errs, errors.New("GEMINI_TIMEOUT must be positive"))
	}
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a valid port number, got %q", c.Server.Port))
	}
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required in production"))
	} else if c.IsProduction() && len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters in production"))
	}
	if c.Session.IdleTTL <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TTL must be positive"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_BYTES must be positive"))
	}
	if c.History.RetentionDays < 0 {
		errs = append(errs, errors.New("HISTORY_RETENTION_DAYS must not be negative"))
	}
	if c.History.RetentionDays > 0 {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.History.PurgeCron); err != nil {
			errs = append(errs, fmt.Errorf("HISTORY_PURGE_CRON is invalid: %w", err))
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together"))
	}
	if c.Telegram.MinConfidence < 0 || c.Telegram.MinConfidence > 100 {
		errs = append(errs, errors.New("TELEGRAM_MIN_CONFIDENCE must be between 0 and 100"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%w", errors.Join(errs...))
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envParser reads typed values and keeps parse failures for validate
type envParser struct {
	errs []error
}

func (p *envParser) int(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s must be an integer, got %q", key, value))
		return defaultValue
	}
	return n
}

func (p *envParser) duration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s must be a duration like 90s or 30m, got %q", key, value))
		return defaultValue
	}
	return d
}
