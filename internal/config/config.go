package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. STORYTIME_TEXT_MODEL.
const EnvPrefix = "STORYTIME_"

type Config struct {
	Text      TextConfig      `yaml:"text" envPrefix:"TEXT_" validate:"required"`
	Image     ImageConfig     `yaml:"image" envPrefix:"IMAGE_" validate:"required"`
	Lookup    LookupConfig    `yaml:"lookup" envPrefix:"LOOKUP_"`
	Narration NarrationConfig `yaml:"narration" envPrefix:"NARRATION_"`
	Video     VideoConfig     `yaml:"video" envPrefix:"VIDEO_"`
	Upload    UploadConfig    `yaml:"upload" envPrefix:"UPLOAD_"`
	Paths     PathsConfig     `yaml:"paths" envPrefix:"PATHS_" validate:"required"`
	Limits    Limits          `yaml:"limits" envPrefix:"LIMITS_" validate:"required"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
}

// TextConfig selects the model that writes titles and scenes.
type TextConfig struct {
	Provider    string        `yaml:"provider" env:"PROVIDER" validate:"required,oneof=openai anthropic gemini mock"`
	APIKey      string        `yaml:"api_key" env:"API_KEY"`
	Model       string        `yaml:"model" env:"MODEL"`
	BaseURL     string        `yaml:"base_url" env:"BASE_URL" validate:"omitempty,url"`
	Temperature float64       `yaml:"temperature" env:"TEMPERATURE" validate:"min=0,max=2"`
	TopP        float64       `yaml:"top_p" env:"TOP_P" validate:"min=0,max=1"`
	MaxTokens   int           `yaml:"max_tokens" env:"MAX_TOKENS" validate:"required,min=64,max=200000"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"required,min=1s,max=1h"`
	CacheTTL    time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" validate:"min=0"`
}

// ImageConfig selects the illustrator.
type ImageConfig struct {
	Provider string        `yaml:"provider" env:"PROVIDER" validate:"required,oneof=openai pollinations mock"`
	APIKey   string        `yaml:"api_key" env:"API_KEY"`
	Model    string        `yaml:"model" env:"MODEL"`
	BaseURL  string        `yaml:"base_url" env:"BASE_URL" validate:"omitempty,url"`
	Size     int           `yaml:"size" env:"SIZE" validate:"required,min=64,max=2048"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"required,min=1s,max=1h"`
}

// LookupConfig points at the name and occupation generators.
type LookupConfig struct {
	Enabled        bool          `yaml:"enabled" env:"ENABLED"`
	NamesURL       string        `yaml:"names_url" env:"NAMES_URL" validate:"omitempty,url"`
	OccupationsURL string        `yaml:"occupations_url" env:"OCCUPATIONS_URL" validate:"omitempty,url"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"min=0"`
	CacheTTL       time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" validate:"min=0"`
}

// NarrationConfig configures Google Cloud Text-to-Speech.
type NarrationConfig struct {
	LanguageCode    string `yaml:"language_code" env:"LANGUAGE_CODE" validate:"required"`
	CredentialsFile string `yaml:"credentials_file" env:"CREDENTIALS_FILE"`
	APIKey          string `yaml:"api_key" env:"API_KEY"`
}

// VideoConfig locates the media tools and output geometry.
type VideoConfig struct {
	FFmpeg   string `yaml:"ffmpeg" env:"FFMPEG" validate:"required"`
	FFprobe  string `yaml:"ffprobe" env:"FFPROBE" validate:"required"`
	FontFile string `yaml:"font_file" env:"FONT_FILE"`
	Width    int    `yaml:"width" env:"WIDTH" validate:"required,min=16"`
	Height   int    `yaml:"height" env:"HEIGHT" validate:"required,min=16,ltefield=Width"`
	FPS      int    `yaml:"fps" env:"FPS" validate:"required,min=1,max=120"`
}

// UploadConfig holds the YouTube OAuth client and video defaults.
type UploadConfig struct {
	ClientID     string   `yaml:"client_id" env:"CLIENT_ID"`
	ClientSecret string   `yaml:"client_secret" env:"CLIENT_SECRET"`
	RefreshToken string   `yaml:"refresh_token" env:"REFRESH_TOKEN"`
	Privacy      string   `yaml:"privacy" env:"PRIVACY" validate:"required,oneof=public private unlisted"`
	Category     string   `yaml:"category" env:"CATEGORY" validate:"required,numeric"`
	Tags         []string `yaml:"tags" env:"TAGS" envSeparator:","`
	MaxRetries   int      `yaml:"max_retries" env:"MAX_RETRIES" validate:"min=0,max=20"`
}

type PathsConfig struct {
	StoriesDir string `yaml:"stories_dir" env:"STORIES_DIR" validate:"required"`
	CacheDir   string `yaml:"cache_dir" env:"CACHE_DIR" validate:"required"`
	CatalogDB  string `yaml:"catalog_db" env:"CATALOG_DB" validate:"required"`
	Naming     string `yaml:"naming" env:"NAMING" validate:"required,oneof=title timestamp descriptive"`
}

type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint" env:"ENDPOINT"`
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME" validate:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL" validate:"required,oneof=debug info warn error"`
	Format string `yaml:"format" env:"FORMAT" validate:"required,oneof=text json"`
}

// Default returns a configuration that generates text with OpenAI and
// images with Pollinations, storing everything under the XDG data home.
// Empty models and base URLs select each provider's defaults.
func Default() *Config {
	dataDir := dataHome()
	return &Config{
		Text: TextConfig{
			Provider:    "openai",
			Temperature: 0.7,
			TopP:        1,
			MaxTokens:   4000,
			Timeout:     2 * time.Minute,
			CacheTTL:    0,
		},
		Image: ImageConfig{
			Provider: "pollinations",
			Size:     480,
			Timeout:  2 * time.Minute,
		},
		Lookup: LookupConfig{
			Enabled:        true,
			NamesURL:       "https://blog.reedsy.com/character-name-generator/",
			OccupationsURL: "https://www.onetonline.org/explore/interests/",
			Timeout:        30 * time.Second,
			CacheTTL:       30 * 24 * time.Hour,
		},
		Narration: NarrationConfig{
			LanguageCode: "en-US",
		},
		Video: VideoConfig{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			Width:   854,
			Height:  480,
			FPS:     24,
		},
		Upload: UploadConfig{
			Privacy:    "private",
			Category:   "24",
			MaxRetries: 10,
		},
		Paths: PathsConfig{
			StoriesDir: filepath.Join(dataDir, "stories"),
			CacheDir:   filepath.Join(dataDir, "cache"),
			CatalogDB:  filepath.Join(dataDir, "catalog.db"),
			Naming:     "title",
		},
		Limits: DefaultLimits(),
		Telemetry: TelemetryConfig{
			ServiceName: "storytime",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from path, or from the default location when
// path is empty. A missing file yields the defaults. Values from .env and
// STORYTIME_* environment variables override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = getConfigPath()
	}
	path = expandTilde(path)

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("config file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyCredentialFallbacks()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.reportMissingCredentials(slog.Default())

	return cfg, nil
}

func getConfigPath() string {
	// 1. Explicit config path via environment variable
	if path := os.Getenv("STORYTIME_CONFIG"); path != "" {
		return path
	}

	// 2. XDG_CONFIG_HOME (XDG Base Directory Specification)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "storytime", "config.yaml")
	}

	// 3. Default to ~/.config/storytime/config.yaml (XDG fallback)
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "storytime", "config.yaml")
}

func dataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "storytime")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "storytime")
}

// expandTilde expands a tilde (~) at the beginning of a path to the user's home directory
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// applyCredentialFallbacks reads the providers' conventional variables when
// no key was configured.
func (c *Config) applyCredentialFallbacks() {
	if c.Text.APIKey == "" {
		switch c.Text.Provider {
		case "openai":
			c.Text.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic":
			c.Text.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "gemini":
			c.Text.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
		}
	}
	if c.Image.APIKey == "" && c.Image.Provider == "openai" {
		c.Image.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Narration.CredentialsFile == "" {
		c.Narration.CredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if c.Upload.ClientID == "" {
		c.Upload.ClientID = os.Getenv("YOUTUBE_CLIENT_ID")
	}
	if c.Upload.ClientSecret == "" {
		c.Upload.ClientSecret = os.Getenv("YOUTUBE_CLIENT_SECRET")
	}
	if c.Upload.RefreshToken == "" {
		c.Upload.RefreshToken = os.Getenv("YOUTUBE_REFRESH_TOKEN")
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// reportMissingCredentials logs, without failing, every provider that will
// not be able to authenticate.
func (c *Config) reportMissingCredentials(logger *slog.Logger) {
	if c.Text.APIKey == "" && c.Text.Provider != "mock" {
		logger.Error("text API key not configured; generated text will be empty",
			"provider", c.Text.Provider)
	}
	if c.Image.APIKey == "" && c.Image.Provider == "openai" {
		logger.Error("image API key not configured; images will be skipped",
			"provider", c.Image.Provider)
	}
}

func (c *Config) validate() error {
	c.Paths.StoriesDir = expandTilde(c.Paths.StoriesDir)
	c.Paths.CacheDir = expandTilde(c.Paths.CacheDir)
	c.Paths.CatalogDB = expandTilde(c.Paths.CatalogDB)
	c.Narration.CredentialsFile = expandTilde(c.Narration.CredentialsFile)
	c.Video.FontFile = expandTilde(c.Video.FontFile)

	validate := validator.New()

	validate.RegisterValidation("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	})

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// LogLevel maps the configured level name to a slog level.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
