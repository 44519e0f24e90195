package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"github.com/joho/godotenv"
)

// DefaultBackendURL is the search backend used when nothing else is
// configured. Override at build time with
// -ldflags "-X github.com/kalambet/jobassist/internal/config.DefaultBackendURL=...".
var DefaultBackendURL = "http://127.0.0.1:8000"

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Session SessionConfig
	Log     LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type BackendConfig struct {
	BaseURL       string
	Timeout       string
	RateLimit     float64
	Burst         int
	EnvelopeDepth int
}

type SessionConfig struct {
	TTL string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 3000,
		},
		Backend: BackendConfig{
			BaseURL:       DefaultBackendURL,
			Timeout:       "120s",
			RateLimit:     1.0,
			Burst:         2,
			EnvelopeDepth: 2,
		},
		Session: SessionConfig{
			TTL: "30m",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration in order of increasing precedence: built-in
// defaults, the YAML config file, then JOBASSIST_* environment variables.
// A .env file in the working directory is loaded into the environment first;
// variables that are already set are not overwritten.
//
// The config file lives at $XDG_CONFIG_HOME/jobassist/config.yaml unless
// JOBASSIST_CONFIG points elsewhere.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), ".env")
}

// loadFromPath loads with an explicit config file and .env path.
func loadFromPath(path, envFile string) (Config, error) {
	return loadWith(newFileBackend(path), envFile)
}

func loadWith(b ConfigBackend, envFile string) (Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return Config{}, err
	}

	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid config: backend.base_url %q must be an absolute http(s) URL", c.Backend.BaseURL)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port %d out of range", c.Server.Port)
	}
	if c.Backend.EnvelopeDepth < 1 {
		return fmt.Errorf("invalid config: backend.envelope_depth must be at least 1, got %d", c.Backend.EnvelopeDepth)
	}
	return nil
}

// Addr is the listen address of the web server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func configFilePath() string {
	if p := os.Getenv("JOBASSIST_CONFIG"); p != "" {
		return p
	}
	return defaultConfigFilePath()
}

// FilePath reports the config file Load reads and SetKey writes.
func FilePath() string {
	return configFilePath()
}
