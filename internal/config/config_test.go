package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookclubs.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.RawPath != "data/raw/bookclubs_seattle_raw.csv" {
		t.Errorf("RawPath = %q", cfg.RawPath)
	}
	if cfg.CleanPath != "data/processed/bookclubs_seattle_clean.csv" {
		t.Errorf("CleanPath = %q", cfg.CleanPath)
	}
	if !cfg.Stages.BookExtraction || !cfg.Stages.Tagging {
		t.Errorf("Stages = %+v, want all enabled", cfg.Stages)
	}
	if cfg.Fetch.MaxRequests != 10 || cfg.Fetch.PageDelay != time.Second {
		t.Errorf("Fetch = %+v", cfg.Fetch)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvRawPath, "")
	t.Setenv(EnvCleanPath, "")
	t.Setenv(EnvAPIKey, "")
	t.Setenv("api_key", "")

	path := writeConfig(t, `
raw_path: s3://bucket/raw.csv
stages:
  tagging: false
fetch:
  queries: ["book club Tacoma", "reading group Tacoma"]
  location: Tacoma, WA
  page_delay: 250ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RawPath != "s3://bucket/raw.csv" {
		t.Errorf("RawPath = %q", cfg.RawPath)
	}
	if cfg.CleanPath != DefaultCleanPath {
		t.Errorf("CleanPath = %q, want default kept", cfg.CleanPath)
	}
	if cfg.Stages.Tagging || !cfg.Stages.BookExtraction {
		t.Errorf("Stages = %+v, want only tagging disabled", cfg.Stages)
	}
	if want := []string{"book club Tacoma", "reading group Tacoma"}; !reflect.DeepEqual(cfg.Fetch.Queries, want) {
		t.Errorf("Queries = %v, want %v", cfg.Fetch.Queries, want)
	}
	if cfg.Fetch.PageDelay != 250*time.Millisecond {
		t.Errorf("PageDelay = %v, want 250ms", cfg.Fetch.PageDelay)
	}
	if cfg.Fetch.MaxRequests != 10 {
		t.Errorf("MaxRequests = %d, want default 10", cfg.Fetch.MaxRequests)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv(EnvRawPath, "env/raw.csv")
	t.Setenv(EnvAPIKey, "")
	t.Setenv("api_key", "legacy-key")

	path := writeConfig(t, "raw_path: file/raw.csv\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RawPath != "env/raw.csv" {
		t.Errorf("RawPath = %q, want env value", cfg.RawPath)
	}
	if cfg.Fetch.APIKey != "legacy-key" {
		t.Errorf("APIKey = %q, want legacy variable honoured", cfg.Fetch.APIKey)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown key", content: "raw_pth: x\n", want: "raw_pth"},
		{name: "bad duration", content: "fetch:\n  page_delay: soon\n", want: "time.Duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file should fail")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Stages.Tagging {
		t.Error("empty file should keep defaults")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvCleanPath:   "out.json",
		EnvLogLevel:    "debug",
		EnvMetricsFile: "/var/lib/node_exporter/bookclubs.prom",
		EnvAPIKey:      "primary",
		"api_key":      "legacy",
		EnvRawPath:     "   ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	cfg.ApplyEnv(lookup)

	if cfg.CleanPath != "out.json" || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MetricsFile != "/var/lib/node_exporter/bookclubs.prom" {
		t.Errorf("MetricsFile = %q", cfg.MetricsFile)
	}
	if cfg.Fetch.APIKey != "primary" {
		t.Errorf("APIKey = %q, want SERPAPI_API_KEY to win", cfg.Fetch.APIKey)
	}
	if cfg.RawPath != DefaultRawPath {
		t.Errorf("RawPath = %q, blank env values must be ignored", cfg.RawPath)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.CleanPath = ""
	cfg.Fetch.MaxRequests = -1
	cfg.Fetch.PageDelay = -time.Second

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	for _, want := range []string{"clean_path", "max_requests", "page_delay"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error = %v, missing %q", err, want)
		}
	}
}
