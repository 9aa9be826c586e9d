package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "unknown text provider",
			mutate:  func(c *Config) { c.Text.Provider = "davinci" },
			wantErr: true,
			errMsg:  "Provider",
		},
		{
			name:    "invalid base URL",
			mutate:  func(c *Config) { c.Text.BaseURL = "not-a-url" },
			wantErr: true,
			errMsg:  "BaseURL",
		},
		{
			name:    "temperature too high",
			mutate:  func(c *Config) { c.Text.Temperature = 3 },
			wantErr: true,
			errMsg:  "Temperature",
		},
		{
			name:    "invalid privacy",
			mutate:  func(c *Config) { c.Upload.Privacy = "friends" },
			wantErr: true,
			errMsg:  "Privacy",
		},
		{
			name:    "odd scenes per act",
			mutate:  func(c *Config) { c.Limits.ScenesPerAct = 3 },
			wantErr: true,
			errMsg:  "ScenesPerAct",
		},
		{
			name:    "max delay below base delay",
			mutate:  func(c *Config) { c.Limits.MaxDelay = 100 * time.Millisecond },
			wantErr: true,
			errMsg:  "MaxDelay",
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Limits.Workers = 200 },
			wantErr: true,
			errMsg:  "Workers",
		},
		{
			name:    "unknown naming strategy",
			mutate:  func(c *Config) { c.Paths.Naming = "random" },
			wantErr: true,
			errMsg:  "Naming",
		},
		{
			name:    "non numeric category",
			mutate:  func(c *Config) { c.Upload.Category = "Entertainment" },
			wantErr: true,
			errMsg:  "Category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("validate() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Text.Provider != "openai" || cfg.Limits.ScenesPerAct != 2 || cfg.Upload.Category != "24" {
		t.Errorf("Load() did not return defaults: %+v", cfg)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	path := filepath.Join(dir, "config.yaml")
	data := `
text:
  provider: anthropic
  model: claude-3-5-haiku-latest
  base_url: https://api.anthropic.com/v1
limits:
  scenes_per_act: 4
  base_delay: 2s
paths:
  stories_dir: ~/tales
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("STORYTIME_TEXT_MODEL", "claude-sonnet-4-0")
	t.Setenv("STORYTIME_LIMITS_WORKERS", "4")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("STORYTIME_UPLOAD_TAGS", "fairy tale,kids")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Text.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", cfg.Text.Provider)
	}
	if cfg.Text.Model != "claude-sonnet-4-0" {
		t.Errorf("Model = %q, want env override", cfg.Text.Model)
	}
	if cfg.Text.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want fallback from ANTHROPIC_API_KEY", cfg.Text.APIKey)
	}
	if cfg.Limits.ScenesPerAct != 4 || cfg.Limits.Workers != 4 {
		t.Errorf("Limits = %+v", cfg.Limits)
	}
	if cfg.Limits.BaseDelay != 2*time.Second {
		t.Errorf("BaseDelay = %v, want 2s", cfg.Limits.BaseDelay)
	}
	if cfg.Text.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want default kept", cfg.Text.Temperature)
	}
	if strings.HasPrefix(cfg.Paths.StoriesDir, "~") {
		t.Errorf("StoriesDir = %q, want tilde expanded", cfg.Paths.StoriesDir)
	}
	if len(cfg.Upload.Tags) != 2 || cfg.Upload.Tags[0] != "fairy tale" {
		t.Errorf("Tags = %v", cfg.Upload.Tags)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("text: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("Load() error = %v, want parse error", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Run("explicit env", func(t *testing.T) {
		t.Setenv("STORYTIME_CONFIG", "/tmp/custom.yaml")
		if got := getConfigPath(); got != "/tmp/custom.yaml" {
			t.Errorf("getConfigPath() = %q", got)
		}
	})

	t.Run("xdg", func(t *testing.T) {
		t.Setenv("STORYTIME_CONFIG", "")
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		if got := getConfigPath(); got != filepath.Join("/xdg", "storytime", "config.yaml") {
			t.Errorf("getConfigPath() = %q", got)
		}
	})
}

func TestDefaultLimits(t *testing.T) {
	limits := DefaultLimits()

	if limits.Workers != 1 {
		t.Errorf("Workers = %d, want sequential default of 1", limits.Workers)
	}
	p := limits.RetryPolicy()
	if p.MaxRetries != limits.MaxRetries || p.BaseDelay != limits.BaseDelay || p.BackoffMultiplier != 2 {
		t.Errorf("RetryPolicy() = %+v", p)
	}
}
