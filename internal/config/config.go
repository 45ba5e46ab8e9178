// Package config loads service configuration from an optional YAML file
// and LR_-prefixed environment variables, with env taking precedence.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	GenAI    GenAIConfig    `koanf:"genai"`
	Storage  StorageConfig  `koanf:"storage"`
	Webhooks WebhooksConfig `koanf:"webhooks"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type GenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`

	MaxAttempts       int `koanf:"max_attempts"`
	RateLimitBaseMS   int `koanf:"rate_limit_base_ms"`
	TransientDelayMS  int `koanf:"transient_delay_ms"`
	PromptTokenBudget int `koanf:"prompt_token_budget"`
}

type StorageConfig struct {
	Path string `koanf:"path"`
}

type WebhooksConfig struct {
	LeadURL     string `koanf:"lead_url"`
	EmailURL    string `koanf:"email_url"`
	OperatorURL string `koanf:"operator_url"`
}

// Load reads configPath (skipped when empty or missing) then overlays
// LR_-prefixed environment variables, e.g. LR_GENAI_API_KEY.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	// Only the first underscore separates section from key, so
	// LR_GENAI_API_KEY maps to genai.api_key rather than genai.api.key.
	if err := k.Load(env.Provider("LR_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "LR_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("genai.model") {
		k.Set("genai.model", "gpt-4o-mini")
	}
	if !k.Exists("storage.path") {
		k.Set("storage.path", "./data/rewriter.db")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
