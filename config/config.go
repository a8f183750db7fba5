// Package config loads service settings from defaults, an optional YAML
// file and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pdf_watermark/pdf"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultMaxFileSize is the default maximum upload size (10MB)
	DefaultMaxFileSize = 10 * 1024 * 1024

	// DefaultPort is the default server port
	DefaultPort = "8080"

	// DefaultTempDir is the default temporary directory
	DefaultTempDir = "./temp"

	// DefaultMutoolTimeout bounds each mutool invocation
	DefaultMutoolTimeout = 60 * time.Second
)

// Server holds HTTP settings
type Server struct {
	Port        string `yaml:"port" validate:"required,numeric"`
	MaxFileSize int64  `yaml:"max_file_size" validate:"gt=0"`
	TempDir     string `yaml:"temp_dir" validate:"required"`
}

// Detection holds analyze defaults
type Detection struct {
	ThresholdRatio float64 `yaml:"threshold_ratio"`
	SampleBudget   int     `yaml:"sample_budget"`
	Workers        int     `yaml:"workers"`
}

// Removal holds the removal policy as written in the file
type Removal struct {
	OverlapThreshold float64 `yaml:"overlap_threshold"`
	Tolerance        float64 `yaml:"tolerance"`
	Fill             string  `yaml:"fill"`
	Images           string  `yaml:"images"`
}

// Mutool locates the MuPDF command line tool
type Mutool struct {
	Path    string        `yaml:"path" validate:"required"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Log configures the process logger
type Log struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled off"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// Config is the full service configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Detection Detection `yaml:"detection"`
	Removal   Removal   `yaml:"removal"`
	Mutool    Mutool    `yaml:"mutool"`
	Log       Log       `yaml:"log"`
}

// Default returns the built-in configuration
func Default() *Config {
	opts := pdf.DefaultOptions()
	policy := pdf.DefaultPolicy()
	return &Config{
		Server: Server{Port: DefaultPort, MaxFileSize: DefaultMaxFileSize, TempDir: DefaultTempDir},
		Detection: Detection{
			ThresholdRatio: opts.ThresholdRatio,
			SampleBudget:   opts.SampleBudget,
			Workers:        opts.Workers,
		},
		Removal: Removal{
			OverlapThreshold: policy.OverlapThreshold,
			Tolerance:        policy.Tolerance,
			Fill:             "white",
			Images:           string(policy.Images),
		},
		Mutool: Mutool{Path: "mutool", Timeout: DefaultMutoolTimeout},
		Log:    Log{Level: "info", Format: "console"},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.TempDir = getEnv("TEMP_DIR", c.Server.TempDir)
	c.Mutool.Path = getEnv("MUTOOL_PATH", c.Mutool.Path)
	c.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", c.Log.Level))
	c.Log.Format = strings.ToLower(getEnv("LOG_FORMAT", c.Log.Format))

	var err error
	if c.Server.MaxFileSize, err = getEnvInt64("MAX_FILE_SIZE", c.Server.MaxFileSize); err != nil {
		return err
	}
	if c.Mutool.Timeout, err = getEnvDuration("MUTOOL_TIMEOUT", c.Mutool.Timeout); err != nil {
		return err
	}
	if c.Detection.ThresholdRatio, err = getEnvFloat("WM_THRESHOLD", c.Detection.ThresholdRatio); err != nil {
		return err
	}
	n, err := getEnvInt64("WM_SAMPLE_PAGES", int64(c.Detection.SampleBudget))
	if err != nil {
		return err
	}
	c.Detection.SampleBudget = int(n)
	return nil
}

// Validate checks every section, including the detection and removal values
func (c *Config) Validate() error {
	if err := pdf.Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Options().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Options returns the detection defaults as engine options
func (c *Config) Options() pdf.Options {
	return pdf.Options{
		ThresholdRatio: c.Detection.ThresholdRatio,
		SampleBudget:   c.Detection.SampleBudget,
		Workers:        c.Detection.Workers,
	}
}

// Policy converts the removal section into an engine policy
func (c *Config) Policy() (pdf.Policy, error) {
	fill, err := pdf.ParseFill(c.Removal.Fill)
	if err != nil {
		return pdf.Policy{}, err
	}
	images, err := pdf.ParseImagePolicy(c.Removal.Images)
	if err != nil {
		return pdf.Policy{}, err
	}
	p := pdf.Policy{
		OverlapThreshold: c.Removal.OverlapThreshold,
		Tolerance:        c.Removal.Tolerance,
		Fill:             fill,
		Images:           images,
	}
	return p, p.Validate()
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, value)
	}
	return f, nil
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}
