package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/vladimiradmaev/nutrition-bot/internal/logger"
)

const (
	ProviderBird = "bird"
	ProviderMeta = "meta"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	WhatsApp   WhatsAppConfig   `envconfig:"WHATSAPP"`
	Bird       BirdConfig       `envconfig:"BIRD"`
	Meta       MetaConfig       `envconfig:"META"`
	AI         AIConfig         `envconfig:"AI"`
	OpenRouter OpenRouterConfig `envconfig:"OPENROUTER"`
	Gemini     GeminiConfig     `envconfig:"GEMINI"`
	DB         DBConfig         `envconfig:"DB"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	RabbitMQ   RabbitMQConfig   `envconfig:"RABBITMQ"`
	HTTP       HTTPConfig       `envconfig:"HTTP"`
	Bot        BotConfig        `envconfig:"BOT"`
	Logger     LoggerConfig     `envconfig:"LOG"`

	DatabaseURL   string `envconfig:"DATABASE_URL"`
	TelegramToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	OTLPEndpoint  string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Environment   string `envconfig:"ENV" default:"dev"`
}

// Nested fields use split_words so that BIRD_API_KEY never falls back to a bare API_KEY.

type WhatsAppConfig struct {
	Provider string        `split_words:"true" default:"bird"`
	Timeout  time.Duration `split_words:"true" default:"15s"`
}

type BirdConfig struct {
	APIKey      string `split_words:"true"`
	WorkspaceID string `split_words:"true"`
	ChannelID   string `split_words:"true"`
	BaseURL     string `split_words:"true" default:"https://api.bird.com"`
}

type MetaConfig struct {
	AccessToken   string `split_words:"true"`
	PhoneNumberID string `split_words:"true"`
	VerifyToken   string `split_words:"true"`
	BaseURL       string `split_words:"true" default:"https://graph.facebook.com/v18.0"`
}

type AIConfig struct {
	Timeout time.Duration `split_words:"true" default:"30s"`
}

type OpenRouterConfig struct {
	APIKey  string `split_words:"true"`
	Model   string `split_words:"true" default:"meta-llama/llama-4-scout:free"`
	BaseURL string `split_words:"true" default:"https://openrouter.ai/api/v1"`
	AppURL  string `split_words:"true" default:"https://github.com/vladimiradmaev/nutrition-bot"`
	AppName string `split_words:"true" default:"WhatsApp Nutrition Bot"`
}

type GeminiConfig struct {
	APIKey string `split_words:"true"`
	Model  string `split_words:"true" default:"gemini-1.5-flash"`
}

type DBConfig struct {
	Driver     string `split_words:"true" default:"postgres"`
	URL        string `split_words:"true"`
	Host       string `split_words:"true" default:"localhost"`
	Port       string `split_words:"true" default:"5432"`
	User       string `split_words:"true" default:"postgres"`
	Password   string `split_words:"true" default:"postgres"`
	Name       string `split_words:"true" default:"nutrition_bot"`
	SqlitePath string `split_words:"true" default:"data/nutrition.db"`
}

// DSN returns the postgres connection string, preferring an explicit URL
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

type RedisConfig struct {
	Addr     string `split_words:"true"`
	Password string `split_words:"true"`
	DB       int    `split_words:"true" default:"0"`
}

type RabbitMQConfig struct {
	URL      string `split_words:"true"`
	Exchange string `split_words:"true" default:"whatsapp.inbound"`
	Queue    string `split_words:"true" default:"nutrition-bot.inbound"`
	Prefetch int    `split_words:"true" default:"8"`
}

type HTTPConfig struct {
	Addr string `split_words:"true" default:":8080"`
}

type BotConfig struct {
	Workers         int `split_words:"true" default:"8"`
	ImageDailyLimit int `split_words:"true" default:"20"`
}

type LoggerConfig struct {
	Level  string `split_words:"true" default:"info"`
	Output string `split_words:"true" default:"logs/app.log"`
	Format string `split_words:"true" default:"json"`
}

// LogLevel converts the configured level name
func (c LoggerConfig) LogLevel() logger.LogLevel {
	return parseLogLevel(c.Level)
}

// LoggerSettings returns the logger package configuration
func (c LoggerConfig) LoggerSettings() logger.Config {
	return logger.Config{
		Level:      c.LogLevel(),
		OutputPath: c.Output,
		Format:     c.Format,
	}
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

// Load reads the configuration from the environment and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if cfg.DB.URL == "" {
		cfg.DB.URL = cfg.DatabaseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing or inconsistent setting at once
func (c *Config) Validate() error {
	var problems []string

	switch c.WhatsApp.Provider {
	case ProviderBird:
		if c.Bird.APIKey == "" || c.Bird.WorkspaceID == "" || c.Bird.ChannelID == "" {
			problems = append(problems, "BIRD_API_KEY, BIRD_WORKSPACE_ID and BIRD_CHANNEL_ID are required for the bird provider")
		}
	case ProviderMeta:
		if c.Meta.AccessToken == "" || c.Meta.PhoneNumberID == "" {
			problems = append(problems, "META_ACCESS_TOKEN and META_PHONE_NUMBER_ID are required for the meta provider")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown WHATSAPP_PROVIDER %q", c.WhatsApp.Provider))
	}

	if c.OpenRouter.APIKey == "" && c.Gemini.APIKey == "" {
		problems = append(problems, "at least one of OPENROUTER_API_KEY or GEMINI_API_KEY is required")
	}

	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		problems = append(problems, fmt.Sprintf("unknown DB_DRIVER %q", c.DB.Driver))
	}

	if c.AI.Timeout <= 0 {
		problems = append(problems, "AI_TIMEOUT must be positive")
	}
	if c.Bot.Workers <= 0 {
		problems = append(problems, "BOT_WORKERS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
