package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	Env      string `yaml:"env"`

	Classifier Classifier `yaml:"classifier"`
	Fetch      Fetch      `yaml:"fetch"`

	DatabaseURL    string `yaml:"database_url"`
	UmamiURL       string `yaml:"umami_url"`
	UmamiWebsiteID string `yaml:"umami_website_id"`

	TelegramBotToken string `yaml:"telegram_bot_token"`
	WebhookURL       string `yaml:"webhook_url"`
}

type Classifier struct {
	// Name is bayes, gemini or none.
	Name         string   `yaml:"name"`
	Workers      int      `yaml:"workers"`
	Labels       []string `yaml:"labels"`
	GeminiAPIKey string   `yaml:"gemini_api_key"`
	GeminiModel  string   `yaml:"gemini_model"`
}

type Fetch struct {
	Timeout  time.Duration `yaml:"timeout"`
	MaxBytes int64         `yaml:"max_bytes"`
}

func Default() *Config {
	return &Config{
		Host:     "0.0.0.0",
		Port:     "8080",
		LogLevel: "info",
		Env:      "prod",
		Classifier: Classifier{
			Name:        "bayes",
			GeminiModel: "gemini-2.0-flash",
		},
		Fetch: Fetch{
			Timeout:  10 * time.Second,
			MaxBytes: 8 << 20,
		},
	}
}

// Load reads .env (if present), then the YAML file named by INKIFY_CONFIG
// (if set), then lets environment variables override both.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := getEnv("INKIFY_CONFIG", ""); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	c.Host = getEnv("HOST", c.Host)
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("INKIFY_LOG_LEVEL", c.LogLevel)
	c.Env = getEnv("INKIFY_ENV", c.Env)

	c.Classifier.Name = getEnv("INKIFY_CLASSIFIER", c.Classifier.Name)
	c.Classifier.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.Classifier.GeminiAPIKey)
	c.Classifier.GeminiModel = getEnv("GEMINI_MODEL", c.Classifier.GeminiModel)
	if v := getEnv("INKIFY_CLASSIFIER_LABELS", ""); v != "" {
		c.Classifier.Labels = splitList(v)
	}
	if v := getEnv("INKIFY_CLASSIFIER_WORKERS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("bad INKIFY_CLASSIFIER_WORKERS %q", v)
		}
		c.Classifier.Workers = n
	}

	if v := getEnv("INKIFY_FETCH_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("bad INKIFY_FETCH_TIMEOUT %q: %w", v, err)
		}
		c.Fetch.Timeout = d
	}
	if v := getEnv("INKIFY_FETCH_MAX_BYTES", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("bad INKIFY_FETCH_MAX_BYTES %q", v)
		}
		c.Fetch.MaxBytes = n
	}

	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.UmamiURL = getEnv("UMAMI_URL", c.UmamiURL)
	c.UmamiWebsiteID = getEnv("UMAMI_WEBSITE_ID", c.UmamiWebsiteID)
	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.WebhookURL = getEnv("WEBHOOK_URL", c.WebhookURL)
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string { return c.Host + ":" + c.Port }

// UmamiEnabled reports whether both Umami settings are present.
func (c *Config) UmamiEnabled() bool { return c.UmamiURL != "" && c.UmamiWebsiteID != "" }

// RequireTelegram fails when the bot token is missing.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("missing required env TELEGRAM_BOT_TOKEN")
	}
	return nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
