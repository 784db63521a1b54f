package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "API_KEY", "ALLOWED_ORIGINS", "STATIC_DIR", "LOG_LEVEL",
		"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW",
		"GOOGLE_SPREADSHEET_ID", "GOOGLE_SERVICE_ACCOUNT_EMAIL", "GOOGLE_PRIVATE_KEY",
		"GOOGLE_SHEETS_ENDPOINT", "GOOGLE_SHEETS_TIMEOUT",
		"DIRECTORY_SHEET", "DIRECTORY_LINK_COLUMN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "3000" || cfg.Directory.Sheet != "Stock_Score" || cfg.Directory.LinkColumn != "B" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RateLimitMax != 50 || cfg.RateLimitWindow != time.Minute || cfg.Google.Timeout != 30*time.Second {
		t.Fatalf("unexpected limits %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `port: "4000"
allowed_origins:
  - https://a.example
rate_limit_window: 30s
google:
  spreadsheet_id: FROM_FILE
  timeout: 5s
directory:
  sheet: Directory
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	clearEnv(t)
	t.Setenv("GOOGLE_SPREADSHEET_ID", "FROM_ENV")
	t.Setenv("GOOGLE_PRIVATE_KEY", `-----BEGIN-----\nabc\n-----END-----`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "4000" {
		t.Fatalf("expected port from file, got %q", cfg.Port)
	}
	if cfg.RateLimitWindow != 30*time.Second || cfg.Google.Timeout != 5*time.Second {
		t.Fatalf("expected durations from file, got %v %v", cfg.RateLimitWindow, cfg.Google.Timeout)
	}
	if cfg.Directory.Sheet != "Directory" || cfg.Directory.LinkColumn != "B" {
		t.Fatalf("expected file to override only what it names, got %+v", cfg.Directory)
	}
	if cfg.Google.SpreadsheetID != "FROM_ENV" {
		t.Fatalf("expected env to win, got %q", cfg.Google.SpreadsheetID)
	}
	if cfg.Google.PrivateKey != "-----BEGIN-----\nabc\n-----END-----" {
		t.Fatalf("expected escaped newlines to be expanded, got %q", cfg.Google.PrivateKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestApplyEnvIgnoresInvalidNumbers(t *testing.T) {
	env := map[string]string{
		"ALLOWED_ORIGINS":       " https://a.example , ,https://b.example",
		"RATE_LIMIT_MAX":        "lots",
		"RATE_LIMIT_WINDOW":     "2m",
		"GOOGLE_SHEETS_TIMEOUT": "-1s",
		"DIRECTORY_LINK_COLUMN": "c",
	}
	cfg := Defaults()
	applyEnv(&cfg, func(key string) string { return env[key] })

	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.RateLimitMax != 50 {
		t.Fatalf("expected invalid max to be ignored, got %d", cfg.RateLimitMax)
	}
	if cfg.RateLimitWindow != 2*time.Minute {
		t.Fatalf("expected window override, got %v", cfg.RateLimitWindow)
	}
	if cfg.Google.Timeout != 30*time.Second {
		t.Fatalf("expected negative timeout to be ignored, got %v", cfg.Google.Timeout)
	}
	if cfg.Directory.LinkColumn != "c" {
		t.Fatalf("expected link column override, got %q", cfg.Directory.LinkColumn)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"WARN":  logrus.WarnLevel,
		"":      logrus.InfoLevel,
		"loud":  logrus.InfoLevel,
	}
	for raw, want := range tests {
		if got := (Config{LogLevel: raw}).ParseLogLevel(); got != want {
			t.Fatalf("%q: expected %v got %v", raw, want, got)
		}
	}
}
