// Package config holds the settings of the bookclubs tool.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables. Command-line flags are applied last by the cli
// package.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables
const (
	EnvRawPath     = "BOOKCLUBS_RAW_PATH"
	EnvCleanPath   = "BOOKCLUBS_CLEAN_PATH"
	EnvLogLevel    = "BOOKCLUBS_LOG_LEVEL"
	EnvMetricsFile = "BOOKCLUBS_METRICS_FILE"
	EnvAPIKey      = "SERPAPI_API_KEY"
	envLegacyKey   = "api_key"
)

// Default values
const (
	DefaultRawPath   = "data/raw/bookclubs_seattle_raw.csv"
	DefaultCleanPath = "data/processed/bookclubs_seattle_clean.csv"
	DefaultLogLevel  = "INFO"
	DefaultLocation  = "Seattle, WA"
)

// Stages toggles optional cleaning stages
type Stages struct {
	BookExtraction bool `yaml:"book_extraction"`
	Tagging        bool `yaml:"tagging"`
}

// Fetch configures the event search client
type Fetch struct {
	// URL overrides the search endpoint
	URL         string        `yaml:"url"`
	APIKey      string        `yaml:"api_key"`
	Queries     []string      `yaml:"queries"`
	Location    string        `yaml:"location"`
	MaxRequests int           `yaml:"max_requests"`
	MaxPages    int           `yaml:"max_pages"`
	PageDelay   time.Duration `yaml:"page_delay"`
}

// Config is the full tool configuration
type Config struct {
	RawPath     string `yaml:"raw_path"`
	CleanPath   string `yaml:"clean_path"`
	LogLevel    string `yaml:"log_level"`
	MetricsFile string `yaml:"metrics_file"`
	Stages      Stages `yaml:"stages"`
	Fetch       Fetch  `yaml:"fetch"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		RawPath:   DefaultRawPath,
		CleanPath: DefaultCleanPath,
		LogLevel:  DefaultLogLevel,
		Stages: Stages{
			BookExtraction: true,
			Tagging:        true,
		},
		Fetch: Fetch{
			Queries:     []string{"book club events Seattle"},
			Location:    DefaultLocation,
			MaxRequests: 10,
			MaxPages:    10,
			PageDelay:   time.Second,
		},
	}
}

// Load builds a configuration from defaults, the YAML file at path (skipped
// when path is empty) and the process environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// decode overlays YAML onto cfg. Keys the Config does not know are errors.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from environment variables found by lookup.
// Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	set(&c.RawPath, EnvRawPath)
	set(&c.CleanPath, EnvCleanPath)
	set(&c.LogLevel, EnvLogLevel)
	set(&c.MetricsFile, EnvMetricsFile)
	set(&c.Fetch.APIKey, EnvAPIKey, envLegacyKey)
}

// Validate checks the configuration for values no command can run with
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.RawPath) == "" {
		problems = append(problems, "raw_path is empty")
	}
	if strings.TrimSpace(c.CleanPath) == "" {
		problems = append(problems, "clean_path is empty")
	}
	if c.Fetch.MaxRequests < 0 {
		problems = append(problems, "fetch.max_requests is negative")
	}
	if c.Fetch.MaxPages < 0 {
		problems = append(problems, "fetch.max_pages is negative")
	}
	if c.Fetch.PageDelay < 0 {
		problems = append(problems, "fetch.page_delay is negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
