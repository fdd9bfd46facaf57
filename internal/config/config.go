// Package config loads tool configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "1h30m" parse.
type Duration time.Duration

// UnmarshalYAML accepts either a duration string or integer nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the top-level configuration for all subcommands.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Convert  ConvertConfig `yaml:"convert"`
	Fetch    FetchConfig   `yaml:"fetch"`
	Server   ServerConfig  `yaml:"server"`
}

// ConvertConfig holds conversion defaults; CLI flags override them per run.
type ConvertConfig struct {
	Quality              int  `yaml:"quality"`
	PreserveTransparency bool `yaml:"preserve_transparency"`
	CropBorders          bool `yaml:"crop_borders"`

	// Border scan tuning. The horizontal/vertical asymmetry is a tuned
	// default, not an invariant, so it is exposed here.
	ScanRows      int `yaml:"scan_rows"`
	ScanCols      int `yaml:"scan_cols"`
	ScanTolerance int `yaml:"scan_tolerance"`
}

// FetchConfig holds page-download settings.
type FetchConfig struct {
	MaxImages   int      `yaml:"max_images"`
	Timeout     Duration `yaml:"timeout"`
	MaxRetries  int      `yaml:"max_retries"`
	UserAgent   string   `yaml:"user_agent"`
	DownloadDir string   `yaml:"download_dir"`
}

// ServerConfig holds settings for the web form server.
type ServerConfig struct {
	Addr          string   `yaml:"addr"`
	PasswordHash  string   `yaml:"password_hash"`
	SessionTTL    Duration `yaml:"session_ttl"`
	MaxUploadSize int64    `yaml:"max_upload_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Convert: ConvertConfig{
			Quality:              75,
			PreserveTransparency: true,
			ScanRows:             50,
			ScanCols:             400,
			ScanTolerance:        30,
		},
		Fetch: FetchConfig{
			MaxImages:   50,
			Timeout:     Duration(10 * time.Second),
			MaxRetries:  3,
			DownloadDir: "downloaded_images",
		},
		Server: ServerConfig{
			Addr:          ":8080",
			SessionTTL:    Duration(12 * time.Hour),
			MaxUploadSize: 100 * 1024 * 1024,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// given), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("WEBP_BATCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WEBP_BATCH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("WEBP_BATCH_PASSWORD_HASH"); v != "" {
		cfg.Server.PasswordHash = v
	}
	if v := os.Getenv("WEBP_BATCH_QUALITY"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid WEBP_BATCH_QUALITY %q: %w", v, err)
		}
		cfg.Convert.Quality = q
	}
	return nil
}

func (c *Config) validate() error {
	if c.Convert.Quality < 0 || c.Convert.Quality > 100 {
		return fmt.Errorf("config: quality %d outside [0,100]", c.Convert.Quality)
	}
	if c.Fetch.MaxImages < 1 {
		return fmt.Errorf("config: fetch.max_images must be positive")
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("config: fetch.max_retries must not be negative")
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("config: server.session_ttl must be positive")
	}
	return nil
}
