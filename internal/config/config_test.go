// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, defaults, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
backend:
  base_url: "http://rag.internal:8000"
  timeout: "90s"

uploads:
  allowed_extensions:
    - ".pdf"
    - ".txt"
    - ".md"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != "http://rag.internal:8000" {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, "http://rag.internal:8000")
	}
	if cfg.Backend.Timeout != 90*time.Second {
		t.Errorf("Backend.Timeout = %v, want %v", cfg.Backend.Timeout, 90*time.Second)
	}
	if len(cfg.Uploads.AllowedExtensions) != 3 {
		t.Errorf("Uploads.AllowedExtensions len = %d, want 3", len(cfg.Uploads.AllowedExtensions))
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoad_TOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", `
[backend]
base_url = "https://rag.example.com"
timeout = "5m"

[uploads]
allowed_extensions = [".pdf"]

[logging]
level = "warn"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != "https://rag.example.com" {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, "https://rag.example.com")
	}
	if cfg.Backend.Timeout != 5*time.Minute {
		t.Errorf("Backend.Timeout = %v, want %v", cfg.Backend.Timeout, 5*time.Minute)
	}
	if len(cfg.Uploads.AllowedExtensions) != 1 || cfg.Uploads.AllowedExtensions[0] != ".pdf" {
		t.Errorf("Uploads.AllowedExtensions = %v, want [.pdf]", cfg.Uploads.AllowedExtensions)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}
	// Unset format falls back to the default
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", "")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := Default()
	if cfg.Backend.BaseURL != def.Backend.BaseURL {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, def.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 0 {
		t.Errorf("Backend.Timeout = %v, want 0", cfg.Backend.Timeout)
	}
	if len(cfg.Uploads.AllowedExtensions) != 2 {
		t.Errorf("Uploads.AllowedExtensions = %v, want defaults", cfg.Uploads.AllowedExtensions)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_DOCCHAT_BACKEND", "http://10.0.0.5:8000")

	configPath := writeConfig(t, "config.yaml", `
backend:
  base_url: "${TEST_DOCCHAT_BACKEND}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != "http://10.0.0.5:8000" {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, "http://10.0.0.5:8000")
	}
}

func TestLoad_EnvVarExpansion_UnsetVar(t *testing.T) {
	os.Unsetenv("TEST_DOCCHAT_UNSET")

	configPath := writeConfig(t, "config.yaml", `
backend:
  base_url: "${TEST_DOCCHAT_UNSET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Unset var expands to empty, which falls back to the default
	if cfg.Backend.BaseURL != DefaultBaseURL {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, DefaultBaseURL)
	}
}

func TestLoad_SchemelessBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"localhost:8000", "http://localhost:8000"},
		{"example.com", "http://example.com"},
		{"https://rag.example.com/", "https://rag.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			configPath := writeConfig(t, "config.yaml", "backend:\n  base_url: \""+tt.in+"\"\n")

			cfg, err := Load(configPath)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Backend.BaseURL != tt.want {
				t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Backend.BaseURL != DefaultBaseURL {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, DefaultBaseURL)
	}
}

func TestLoadOrDefault_InvalidFileStillFails(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", "backend: [unclosed")

	if _, err := LoadOrDefault(configPath); err == nil {
		t.Error("LoadOrDefault() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
backend:
  base_url: "http://localhost:8000"
    invalid_indent: true
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	configPath := writeConfig(t, "config.toml", "[backend\nbase_url = 1")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
backend:
  timeout: "soon"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "backend.timeout") {
		t.Errorf("error = %q, want it to mention backend.timeout", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "" },
			wantErr: "backend.base_url is required",
		},
		{
			name:    "bad scheme",
			mutate:  func(c *Config) { c.Backend.BaseURL = "ftp://files.example.com" },
			wantErr: "http or https",
		},
		{
			name:   "missing scheme is accepted",
			mutate: func(c *Config) { c.Backend.BaseURL = "localhost:8000" },
		},
		{
			name:    "missing host",
			mutate:  func(c *Config) { c.Backend.BaseURL = "http://" },
			wantErr: "missing host",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Backend.Timeout = -time.Second },
			wantErr: "backend.timeout",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("DOCCHAT_CONFIG", "/etc/docchat/custom.yaml")
	if got := DefaultPath(); got != "/etc/docchat/custom.yaml" {
		t.Errorf("DefaultPath() = %q, want %q", got, "/etc/docchat/custom.yaml")
	}

	t.Setenv("DOCCHAT_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultPath(); got != filepath.Join("/xdg", "docchat", "config.yaml") {
		t.Errorf("DefaultPath() = %q, want %q", got, filepath.Join("/xdg", "docchat", "config.yaml"))
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOO", "bar")
	t.Setenv("BAZ", "qux")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single env var",
			input:    "${FOO}",
			expected: "bar",
		},
		{
			name:     "env var with surrounding text",
			input:    "prefix-${FOO}-suffix",
			expected: "prefix-bar-suffix",
		},
		{
			name:     "multiple env vars",
			input:    "${FOO}/${BAZ}",
			expected: "bar/qux",
		},
		{
			name:     "no env vars",
			input:    "no-vars-here",
			expected: "no-vars-here",
		},
		{
			name:     "unset env var",
			input:    "${UNSET_VAR}",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
