package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the server.
type Config struct {
	Port            string          `yaml:"port"`
	APIKey          string          `yaml:"api_key"`
	AllowedOrigins  []string        `yaml:"allowed_origins"`
	StaticDir       string          `yaml:"static_dir"`
	RateLimitMax    int             `yaml:"rate_limit_max"`
	RateLimitWindow time.Duration   `yaml:"rate_limit_window"`
	LogLevel        string          `yaml:"log_level"`
	Google          GoogleConfig    `yaml:"google"`
	Directory       DirectoryConfig `yaml:"directory"`
}

// GoogleConfig holds the service account used to read spreadsheets.
type GoogleConfig struct {
	SpreadsheetID       string        `yaml:"spreadsheet_id"`
	ServiceAccountEmail string        `yaml:"service_account_email"`
	PrivateKey          string        `yaml:"private_key"`
	Endpoint            string        `yaml:"endpoint"`
	Timeout             time.Duration `yaml:"timeout"`
}

// DirectoryConfig locates the stock directory tab.
type DirectoryConfig struct {
	Sheet      string `yaml:"sheet"`
	LinkColumn string `yaml:"link_column"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Port:            "3000",
		RateLimitMax:    50,
		RateLimitWindow: time.Minute,
		LogLevel:        "info",
		Google: GoogleConfig{
			Timeout: 30 * time.Second,
		},
		Directory: DirectoryConfig{
			Sheet:      "Stock_Score",
			LinkColumn: "B",
		},
	}
}

// Load starts from Defaults, applies the YAML file at path when path is set,
// then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path = strings.TrimSpace(path); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg, os.Getenv)
	cfg.Google.PrivateKey = strings.ReplaceAll(cfg.Google.PrivateKey, `\n`, "\n")
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found: %w", path, err)
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	setString("PORT", &cfg.Port)
	setString("API_KEY", &cfg.APIKey)
	setString("STATIC_DIR", &cfg.StaticDir)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("GOOGLE_SPREADSHEET_ID", &cfg.Google.SpreadsheetID)
	setString("GOOGLE_SERVICE_ACCOUNT_EMAIL", &cfg.Google.ServiceAccountEmail)
	setString("GOOGLE_PRIVATE_KEY", &cfg.Google.PrivateKey)
	setString("GOOGLE_SHEETS_ENDPOINT", &cfg.Google.Endpoint)
	setString("DIRECTORY_SHEET", &cfg.Directory.Sheet)
	setString("DIRECTORY_LINK_COLUMN", &cfg.Directory.LinkColumn)

	if origins := strings.TrimSpace(getenv("ALLOWED_ORIGINS")); origins != "" {
		cfg.AllowedOrigins = splitList(origins)
	}
	if v := strings.TrimSpace(getenv("RATE_LIMIT_MAX")); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RateLimitMax = val
		}
	}
	if v := strings.TrimSpace(getenv("RATE_LIMIT_WINDOW")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RateLimitWindow = d
		}
	}
	if v := strings.TrimSpace(getenv("GOOGLE_SHEETS_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Google.Timeout = d
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseLogLevel maps LogLevel onto logrus, falling back to info.
func (c Config) ParseLogLevel() logrus.Level {
	level, err := logrus.ParseLevel(strings.TrimSpace(c.LogLevel))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
