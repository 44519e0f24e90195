package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "JOBASSIST_SERVER_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "JOBASSIST_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "backend.base_url", typ: kString, env: "JOBASSIST_BACKEND_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Backend.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Backend.BaseURL },
	},
	{
		key: "backend.timeout", typ: kString, env: "JOBASSIST_BACKEND_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.Backend.Timeout = v.(string) },
		extract: func(cfg Config) any { return cfg.Backend.Timeout },
	},
	{
		key: "backend.rate_limit", typ: kFloat, env: "JOBASSIST_BACKEND_RATE_LIMIT",
		apply:   func(cfg *Config, v any) { cfg.Backend.RateLimit = v.(float64) },
		extract: func(cfg Config) any { return cfg.Backend.RateLimit },
	},
	{
		key: "backend.burst", typ: kInt, env: "JOBASSIST_BACKEND_BURST",
		apply:   func(cfg *Config, v any) { cfg.Backend.Burst = v.(int) },
		extract: func(cfg Config) any { return cfg.Backend.Burst },
	},
	{
		key: "backend.envelope_depth", typ: kInt, env: "JOBASSIST_BACKEND_ENVELOPE_DEPTH",
		apply:   func(cfg *Config, v any) { cfg.Backend.EnvelopeDepth = v.(int) },
		extract: func(cfg Config) any { return cfg.Backend.EnvelopeDepth },
	},
	{
		key: "session.ttl", typ: kString, env: "JOBASSIST_SESSION_TTL",
		apply:   func(cfg *Config, v any) { cfg.Session.TTL = v.(string) },
		extract: func(cfg Config) any { return cfg.Session.TTL },
	},
	{
		key: "log.level", typ: kString, env: "JOBASSIST_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

// parse converts raw text into the Go type the key holds.
func (s keySpec) parse(raw string) (any, error) {
	switch s.typ {
	case kInt:
		return strconv.Atoi(strings.TrimSpace(raw))
	case kFloat:
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	default:
		return raw, nil
	}
}

func lookupSpec(key string) (keySpec, bool) {
	for _, s := range specs {
		if s.key == key {
			return s, true
		}
	}
	return keySpec{}, false
}

// applyBackend copies persisted values into cfg. A value of the wrong type
// in the file is an error.
func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		raw, ok, err := b.Get(s.key)
		if err != nil {
			return fmt.Errorf("reading %s: %w", s.key, err)
		}
		if !ok {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", s.key, err)
		}
		s.apply(cfg, v)
	}
	return nil
}

// applyEnvOverrides applies JOBASSIST_* variables. Unparsable values are
// reported and skipped.
func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
}
