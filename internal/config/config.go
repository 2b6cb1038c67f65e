package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AuthConfig struct {
	HMACSecret    string        `yaml:"hmac_secret"`
	SecureCookie  bool          `yaml:"secure_cookie"`
	CookieDomain  string        `yaml:"cookie_domain"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`       // evict sessions idle longer than this
	SweepInterval time.Duration `yaml:"sweep_interval"` // how often the idle sweeper runs
}

type AIConfig struct {
	Provider        string        `yaml:"provider"` // openai | gemini | noop
	Endpoint        string        `yaml:"endpoint"`
	APIKey          string        `yaml:"api_key"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	Model           string        `yaml:"model"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent upstream calls
}

type ChatConfig struct {
	HistoryLimit int `yaml:"history_limit"` // records returned by GET /chat/history
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Auth   AuthConfig   `yaml:"auth"`
	AI     AIConfig     `yaml:"ai"`
	Chat   ChatConfig   `yaml:"chat"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 12 * time.Hour
	}
	if cfg.Auth.IdleTTL <= 0 {
		cfg.Auth.IdleTTL = cfg.Auth.TokenTTL
	}
	if cfg.Auth.SweepInterval <= 0 {
		cfg.Auth.SweepInterval = 5 * time.Minute
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "openai"
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 30 * time.Second
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 1024
	}
	if cfg.Chat.HistoryLimit <= 0 {
		cfg.Chat.HistoryLimit = 10
	}

	// env overrides for secrets
	if v := os.Getenv("RELAY_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("RELAY_GEMINI_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("RELAY_HMAC_SECRET"); v != "" {
		cfg.Auth.HMACSecret = v
	}

	// Minimal validation
	if cfg.Auth.HMACSecret == "" {
		if !dev {
			return nil, errors.New("auth.hmac_secret is required")
		}
		cfg.Auth.HMACSecret = "dev-insecure-secret"
	}
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.Endpoint == "" && !dev {
			return nil, errors.New("ai.endpoint is required for the openai provider")
		}
	case "gemini":
		if cfg.AI.GeminiKey == "" && !dev {
			return nil, errors.New("ai.gemini_key is required for the gemini provider")
		}
	case "noop":
	default:
		return nil, fmt.Errorf("unknown ai.provider %q", cfg.AI.Provider)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
