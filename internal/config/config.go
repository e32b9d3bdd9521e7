// Package config loads the service configuration from an optional YAML file
// and AUTODIAG_ environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is read when no path is given. It may be absent.
const DefaultPath = "config.yaml"

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore, e.g. AUTODIAG_SERVER__PORT.
const EnvPrefix = "AUTODIAG_"

// GeminiKeyEnv is consulted when no oracle key is configured.
const GeminiKeyEnv = "GEMINI_API_KEY"

type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
	Oracle       OracleConfig       `koanf:"oracle"`
	Conversation ConversationConfig `koanf:"conversation"`
	Workspace    WorkspaceConfig    `koanf:"workspace"`
	Storage      StorageConfig      `koanf:"storage"`
	Events       EventsConfig       `koanf:"events"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
}

type ServerConfig struct {
	Port           int           `koanf:"port"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	// APIKeys enables client authentication when non-empty.
	APIKeys []APIKeyConfig `koanf:"api_keys"`
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

type APIKeyConfig struct {
	Name        string `koanf:"name"`
	KeyHash     string `koanf:"key_hash"`
	Description string `koanf:"description"`
}

type LoggingConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

type OracleConfig struct {
	APIKey          string        `koanf:"api_key"`
	Model           string        `koanf:"model"`
	BaseURL         string        `koanf:"base_url"`
	Rate            float64       `koanf:"rate"` // calls per second; zero means unlimited
	Burst           int           `koanf:"burst"`
	MaxPromptTokens int           `koanf:"max_prompt_tokens"`
	Timeout         time.Duration `koanf:"timeout"`
	Temperature     *float32      `koanf:"temperature"`
	// AllowPrivateNetworks lets BaseURL point at a local proxy.
	AllowPrivateNetworks bool `koanf:"allow_private_networks"`
}

type ConversationConfig struct {
	MaxTurns int `koanf:"max_turns"`
}

type WorkspaceConfig struct {
	IdleTTL       time.Duration `koanf:"idle_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

type StorageConfig struct {
	Type   string       `koanf:"type"` // memory, sqlite
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type EventsConfig struct {
	Type    string `koanf:"type"` // log, nats, none
	NATSURL string `koanf:"nats_url"`
	Subject string `koanf:"subject"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

var defaults = map[string]any{
	"server.port":              8080,
	"server.request_timeout":   "60s",
	"server.rate_burst":        10,
	"logging.level":            "info",
	"oracle.model":             "gemini-1.5-flash",
	"oracle.burst":             1,
	"oracle.max_prompt_tokens": 8000,
	"oracle.timeout":           "30s",
	"conversation.max_turns":   5,
	"workspace.idle_ttl":       "2h",
	"workspace.sweep_interval": "1m",
	"storage.type":             "memory",
	"storage.sqlite.path":      "./data/autodiag.db",
	"events.type":              "log",
	"events.subject":           "autodiag.diagnosis.completed",
	"telemetry.service_name":   "autodiag",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads path (DefaultPath when empty) and then the environment. A
// missing file is only an error when path was given explicitly.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// Environment variables override the file
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	for key, v := range defaults {
		if !k.Exists(key) {
			k.Set(key, v)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.Oracle.APIKey = substituteEnvVars(cfg.Oracle.APIKey)
	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = os.Getenv(GeminiKeyEnv)
	}
	cfg.Events.NATSURL = substituteEnvVars(cfg.Events.NATSURL)

	return &cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d out of range", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	for i, k := range c.Server.APIKeys {
		if b, err := hex.DecodeString(k.KeyHash); err != nil || len(b) != 32 {
			errs = append(errs, fmt.Errorf("server.api_keys[%d].key_hash: want 64 hex characters", i))
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	if c.Oracle.Rate < 0 {
		errs = append(errs, errors.New("oracle.rate must not be negative"))
	}
	if c.Conversation.MaxTurns <= 0 {
		errs = append(errs, errors.New("conversation.max_turns must be positive"))
	}
	switch c.Storage.Type {
	case "memory":
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			errs = append(errs, errors.New("storage.sqlite.path is required for sqlite storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type: unknown type %q", c.Storage.Type))
	}
	switch c.Events.Type {
	case "log", "none":
	case "nats":
		if c.Events.NATSURL == "" {
			errs = append(errs, errors.New("events.nats_url is required for nats events"))
		}
	default:
		errs = append(errs, fmt.Errorf("events.type: unknown type %q", c.Events.Type))
	}
	return errors.Join(errs...)
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
