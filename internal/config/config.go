// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values come from defaults,
// then an optional YAML file, then the environment.
type Config struct {
	Port        string `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`

	PredictionAPIURL   string        `yaml:"prediction_api_url"`
	DoctorAPIURL       string        `yaml:"doctor_api_url"`
	DoctorSearchRadius int           `yaml:"doctor_search_radius"`
	DoctorCacheTTL     time.Duration `yaml:"doctor_cache_ttl"`
	HTTPTimeout        time.Duration `yaml:"http_timeout"`

	Gemini GeminiConfig `yaml:"gemini"`

	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	RedisAddr   string `yaml:"redis_addr"`

	ReportFontPath   string `yaml:"report_font_path"`
	TelegramBotToken string `yaml:"telegram_bot_token"`
	ReportChatID     int64  `yaml:"report_chat_id"`

	GenerateWelcome bool   `yaml:"generate_welcome"`
	LogLevel        string `yaml:"log_level"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

func defaults() *Config {
	return &Config{
		Port:               "8080",
		PredictionAPIURL:   "http://localhost:5000",
		DoctorAPIURL:       "http://localhost:5000",
		DoctorSearchRadius: 5000,
		DoctorCacheTTL:     24 * time.Hour,
		HTTPTimeout:        30 * time.Second,
		Gemini: GeminiConfig{
			BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
			Model:   "gemini-1.5-flash",
		},
		LogLevel: "info",
	}
}

// Load builds the configuration. path may be empty; a named file that
// does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.FrontendURL = getEnv("FRONTEND_URL", c.FrontendURL)
	c.PredictionAPIURL = getEnv("PREDICTION_API_URL", c.PredictionAPIURL)
	c.DoctorAPIURL = getEnv("DOCTOR_API_URL", c.DoctorAPIURL)
	c.DoctorSearchRadius = getEnvInt("DOCTOR_SEARCH_RADIUS", c.DoctorSearchRadius)
	c.DoctorCacheTTL = getEnvDuration("DOCTOR_CACHE_TTL", c.DoctorCacheTTL)
	c.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", c.HTTPTimeout)
	c.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.Gemini.APIKey)
	c.Gemini.BaseURL = getEnv("GEMINI_BASE_URL", c.Gemini.BaseURL)
	c.Gemini.Model = getEnv("GEMINI_MODEL", c.Gemini.Model)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.ReportFontPath = getEnv("REPORT_FONT_PATH", c.ReportFontPath)
	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.ReportChatID = getEnvInt64("REPORT_CHAT_ID", c.ReportChatID)
	c.GenerateWelcome = getEnvBool("GENERATE_WELCOME", c.GenerateWelcome)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT cannot be empty")
	}
	if c.PredictionAPIURL == "" {
		return errors.New("PREDICTION_API_URL cannot be empty")
	}
	if c.DoctorAPIURL == "" {
		return errors.New("DOCTOR_API_URL cannot be empty")
	}
	if c.DoctorSearchRadius <= 0 {
		return errors.New("DOCTOR_SEARCH_RADIUS must be > 0")
	}
	if c.DoctorCacheTTL <= 0 {
		return errors.New("DOCTOR_CACHE_TTL must be > 0")
	}
	if c.Gemini.Model == "" {
		return errors.New("GEMINI_MODEL cannot be empty")
	}
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return errors.New("DATABASE_URL and SQLITE_PATH are mutually exclusive")
	}
	if c.TelegramBotToken != "" && c.ReportChatID == 0 {
		return errors.New("REPORT_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvInt64(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
