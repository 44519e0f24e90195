package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearEnv blanks every JOBASSIST_* override so the host environment does
// not leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

// TestDefaults verifies all default values are applied when loading an empty config file.
func TestDefaults(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "# empty config\n")

	cfg, err := loadFromPath(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != DefaultBackendURL {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, DefaultBackendURL)
	}
	if cfg.Backend.Timeout != "120s" {
		t.Errorf("Backend.Timeout = %q, want %q", cfg.Backend.Timeout, "120s")
	}
	if cfg.Backend.RateLimit != 1.0 {
		t.Errorf("Backend.RateLimit = %v, want 1", cfg.Backend.RateLimit)
	}
	if cfg.Backend.Burst != 2 {
		t.Errorf("Backend.Burst = %d, want 2", cfg.Backend.Burst)
	}
	if cfg.Backend.EnvelopeDepth != 2 {
		t.Errorf("Backend.EnvelopeDepth = %d, want 2", cfg.Backend.EnvelopeDepth)
	}
	if cfg.Session.TTL != "30m" {
		t.Errorf("Session.TTL = %q, want %q", cfg.Session.TTL, "30m")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if got := cfg.Addr(); got != "127.0.0.1:3000" {
		t.Errorf("Addr() = %q, want %q", got, "127.0.0.1:3000")
	}
}

// TestMissingFile verifies a missing config file is not an error.
func TestMissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "nope.yaml"), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
}

// TestYAMLParsing verifies that all fields are correctly read from a YAML file.
func TestYAMLParsing(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, `
server.host: 0.0.0.0
server.port: 8080
backend.base_url: https://jobs.internal:9000
backend.timeout: 45s
backend.rate_limit: 0.5
backend.burst: 4
backend.envelope_depth: 1
session.ttl: 1h
log.level: debug
`)

	cfg, err := loadFromPath(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "https://jobs.internal:9000" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != "45s" {
		t.Errorf("Backend.Timeout = %q", cfg.Backend.Timeout)
	}
	if cfg.Backend.RateLimit != 0.5 {
		t.Errorf("Backend.RateLimit = %v, want 0.5", cfg.Backend.RateLimit)
	}
	if cfg.Backend.Burst != 4 {
		t.Errorf("Backend.Burst = %d, want 4", cfg.Backend.Burst)
	}
	if cfg.Backend.EnvelopeDepth != 1 {
		t.Errorf("Backend.EnvelopeDepth = %d, want 1", cfg.Backend.EnvelopeDepth)
	}
	if cfg.Session.TTL != "1h" {
		t.Errorf("Session.TTL = %q", cfg.Session.TTL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

// TestEnvOverride verifies that environment variables override config file values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "server.port: 8080\nbackend.base_url: http://file:8000\n")

	t.Setenv("JOBASSIST_SERVER_PORT", "9090")
	t.Setenv("JOBASSIST_BACKEND_BASE_URL", "http://env:8000")
	t.Setenv("JOBASSIST_BACKEND_RATE_LIMIT", "2.5")

	cfg, err := loadFromPath(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://env:8000" {
		t.Errorf("Backend.BaseURL = %q, want %q", cfg.Backend.BaseURL, "http://env:8000")
	}
	if cfg.Backend.RateLimit != 2.5 {
		t.Errorf("Backend.RateLimit = %v, want 2.5", cfg.Backend.RateLimit)
	}
}

// TestBadEnvValueKeepsDefault verifies an unparsable override is ignored.
func TestBadEnvValueKeepsDefault(t *testing.T) {
	clearEnv(t)
	path := writeTempConfig(t, "")

	t.Setenv("JOBASSIST_SERVER_PORT", "not-a-port")

	cfg, err := loadFromPath(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
}

// TestDotEnv verifies .env values fill in unset variables but never replace set ones.
func TestDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("JOBASSIST_LOG_LEVEL")
	t.Setenv("JOBASSIST_SERVER_PORT", "7070")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "JOBASSIST_LOG_LEVEL=warn\nJOBASSIST_SERVER_PORT=6060\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFromPath(writeTempConfig(t, ""), envFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"relative backend url", "backend.base_url: localhost:8000\n", "backend.base_url"},
		{"non-http backend url", "backend.base_url: ftp://files.example.com\n", "backend.base_url"},
		{"port out of range", "server.port: 70000\n", "server.port"},
		{"zero envelope depth", "backend.envelope_depth: 0\n", "backend.envelope_depth"},
		{"port not a number", "server.port: eighty\n", "server.port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := loadFromPath(writeTempConfig(t, tt.content), "")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := err.Error(); !strings.Contains(got, tt.want) {
				t.Errorf("error = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

// TestSetKeyRoundTrip verifies values written by setKey are read back by the loader.
func TestSetKeyRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	b := newFileBackend(path)
	if err := setKey(b, "server.port", "4321"); err != nil {
		t.Fatalf("setKey server.port: %v", err)
	}
	if err := setKey(b, "backend.rate_limit", "0.25"); err != nil {
		t.Fatalf("setKey backend.rate_limit: %v", err)
	}
	if err := setKey(b, "log.level", "error"); err != nil {
		t.Fatalf("setKey log.level: %v", err)
	}

	cfg, err := loadFromPath(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4321 {
		t.Errorf("Server.Port = %d, want 4321", cfg.Server.Port)
	}
	if cfg.Backend.RateLimit != 0.25 {
		t.Errorf("Backend.RateLimit = %v, want 0.25", cfg.Backend.RateLimit)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "error")
	}
}

func TestSetKeyRejects(t *testing.T) {
	b := newFileBackend(filepath.Join(t.TempDir(), "config.yaml"))

	if err := setKey(b, "server.port", "abc"); err == nil {
		t.Error("expected error for non-integer port")
	}
	if err := setKey(b, "backend.rate_limit", "fast"); err == nil {
		t.Error("expected error for non-numeric rate limit")
	}
	if err := setKey(b, "no.such.key", "x"); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("err = %v, want unknown config key", err)
	}
}

func TestShowAllMatchesValidKeys(t *testing.T) {
	infos := ShowAll(defaults())
	keys := ValidKeys()
	if len(infos) != len(keys) {
		t.Fatalf("ShowAll returned %d keys, ValidKeys %d", len(infos), len(keys))
	}
	for i, info := range infos {
		if info.Key != keys[i] {
			t.Errorf("infos[%d].Key = %q, want %q", i, info.Key, keys[i])
		}
		if !strings.HasPrefix(info.EnvVar, "JOBASSIST_") {
			t.Errorf("%s env var = %q, want JOBASSIST_ prefix", info.Key, info.EnvVar)
		}
		if info.Key == "server.port" && info.Value != "3000" {
			t.Errorf("server.port value = %q, want %q", info.Value, "3000")
		}
	}
}

func TestConfigFilePathOverride(t *testing.T) {
	t.Setenv("JOBASSIST_CONFIG", "/etc/jobassist.yaml")
	if got := configFilePath(); got != "/etc/jobassist.yaml" {
		t.Errorf("configFilePath() = %q", got)
	}

	t.Setenv("JOBASSIST_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got, want := configFilePath(), filepath.Join("/xdg", "jobassist", "config.yaml"); got != want {
		t.Errorf("configFilePath() = %q, want %q", got, want)
	}
}

func TestUnsetKeyRestoresDefault(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	b := newFileBackend(path)
	if err := setKey(b, "server.port", "8081"); err != nil {
		t.Fatal(err)
	}
	if err := unsetKey(b, "server.port"); err != nil {
		t.Fatalf("unsetKey: %v", err)
	}
	if err := unsetKey(b, "server.nope"); err == nil {
		t.Error("expected error for unknown key")
	}

	cfg, err := loadFromPath(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want default 3000", cfg.Server.Port)
	}
}
