// Package config loads scantext-mcp settings from defaults, an optional
// TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvConfigFile    = "SCANTEXT_CONFIG"
	EnvLanguage      = "SCANTEXT_LANGUAGE"
	EnvEngine        = "SCANTEXT_ENGINE"
	EnvPreviewWidth  = "SCANTEXT_PREVIEW_WIDTH"
	EnvPreviewHeight = "SCANTEXT_PREVIEW_HEIGHT"
	EnvPreprocess    = "SCANTEXT_PREPROCESS"
	EnvCredentials   = "SCANTEXT_VISION_CREDENTIALS"
	EnvLogLevel      = "SCANTEXT_LOG_LEVEL"
)

// Recognition engines.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
)

// Config holds all server settings.
type Config struct {
	// Language is the default recognition language (Tesseract code).
	Language string `toml:"language"`

	// Engine is the default recognizer: "tesseract" or "vision".
	Engine string `toml:"engine"`

	// PreviewWidth and PreviewHeight are the default destination size.
	// Zero means unknown, which leaves coordinates unscaled.
	PreviewWidth  int `toml:"preview_width"`
	PreviewHeight int `toml:"preview_height"`

	Preprocess PreprocessConfig `toml:"preprocess"`
	Vision     VisionConfig     `toml:"vision"`
	Highlight  HighlightConfig  `toml:"highlight"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// PreprocessConfig controls image cleanup before recognition.
type PreprocessConfig struct {
	Enabled bool `toml:"enabled"`

	// Contrast is a percentage change in [-100, 100].
	Contrast float64 `toml:"contrast"`
}

// VisionConfig configures the Google Cloud Vision recognizer.
type VisionConfig struct {
	// CredentialsFile is a service-account JSON file. Empty uses
	// application default credentials.
	CredentialsFile string `toml:"credentials_file"`

	MaxRetries    uint64   `toml:"max_retries"`
	RetryInterval Duration `toml:"retry_interval"`
}

// HighlightConfig holds the overlay colors.
type HighlightConfig struct {
	Selected   string  `toml:"selected"`
	Recognized string  `toml:"recognized"`
	Alpha      float64 `toml:"alpha"`
}

// Duration is a time.Duration that decodes from strings like "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Language: "eng",
		Engine:   EngineTesseract,
		Preprocess: PreprocessConfig{
			Enabled:  false,
			Contrast: 20,
		},
		Vision: VisionConfig{
			MaxRetries:    4,
			RetryInterval: Duration{500 * time.Millisecond},
		},
		Highlight: HighlightConfig{
			Selected:   "#4286F4",
			Recognized: "#FFFFFF",
			Alpha:      0.4,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration: defaults, then the TOML file named by
// SCANTEXT_CONFIG (if any), then SCANTEXT_* environment variables. A .env
// file in the working directory is loaded into the environment first.
func Load() (*Config, error) {
	// A missing .env file is normal.
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile overlays the settings from a TOML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if _, err := toml.Decode(string(data), c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays SCANTEXT_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvLanguage); v != "" {
		c.Language = v
	}
	if v := os.Getenv(EnvEngine); v != "" {
		c.Engine = strings.ToLower(v)
	}
	if v := os.Getenv(EnvCredentials); v != "" {
		c.Vision.CredentialsFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvPreviewWidth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvPreviewWidth, v)
		}
		c.PreviewWidth = n
	}
	if v := os.Getenv(EnvPreviewHeight); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvPreviewHeight, v)
		}
		c.PreviewHeight = n
	}
	if v := os.Getenv(EnvPreprocess); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s must be a boolean, got %q", EnvPreprocess, v)
		}
		c.Preprocess.Enabled = b
	}
	return nil
}

// Validate checks the configuration for values the server cannot use.
func (c *Config) Validate() error {
	var errs []error
	switch c.Engine {
	case EngineTesseract, EngineVision:
	default:
		errs = append(errs, fmt.Errorf("unknown engine %q", c.Engine))
	}
	if c.Language == "" {
		errs = append(errs, errors.New("language must not be empty"))
	}
	if c.PreviewWidth < 0 || c.PreviewHeight < 0 {
		errs = append(errs, errors.New("preview size must not be negative"))
	}
	if c.Preprocess.Contrast < -100 || c.Preprocess.Contrast > 100 {
		errs = append(errs, fmt.Errorf("preprocess contrast %v outside [-100, 100]", c.Preprocess.Contrast))
	}
	if c.Highlight.Alpha < 0 || c.Highlight.Alpha > 1 {
		errs = append(errs, fmt.Errorf("highlight alpha %v outside [0, 1]", c.Highlight.Alpha))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLogLevel maps a level name to a slog level.
func ParseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}
