package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.GenAI.Model != "gpt-4o-mini" {
		t.Errorf("expected default model, got %q", cfg.GenAI.Model)
	}
	if cfg.Storage.Path == "" {
		t.Error("expected a default storage path")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LR_SERVER_PORT", "9999")
	t.Setenv("LR_GENAI_MODEL", "gpt-4o")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999 from env, got %d", cfg.Server.Port)
	}
	if cfg.GenAI.Model != "gpt-4o" {
		t.Errorf("expected model from env, got %q", cfg.GenAI.Model)
	}
}

func TestLoadFromEnvMultiWordKeys(t *testing.T) {
	t.Setenv("LR_GENAI_API_KEY", "env-key")
	t.Setenv("LR_GENAI_MAX_ATTEMPTS", "5")
	t.Setenv("LR_GENAI_RATE_LIMIT_BASE_MS", "800")
	t.Setenv("LR_WEBHOOKS_LEAD_URL", "https://hooks.example.com/lead")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GenAI.APIKey != "env-key" {
		t.Errorf("expected api key from env, got %q", cfg.GenAI.APIKey)
	}
	if cfg.GenAI.MaxAttempts != 5 {
		t.Errorf("expected max attempts 5 from env, got %d", cfg.GenAI.MaxAttempts)
	}
	if cfg.GenAI.RateLimitBaseMS != 800 {
		t.Errorf("expected rate limit base 800 from env, got %d", cfg.GenAI.RateLimitBaseMS)
	}
	if cfg.Webhooks.LeadURL != "https://hooks.example.com/lead" {
		t.Errorf("expected lead url from env, got %q", cfg.Webhooks.LeadURL)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7070
genai:
  api_key: file-key
  model: gpt-4o
webhooks:
  lead_url: https://hooks.example.com/lead
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected port 7070 from file, got %d", cfg.Server.Port)
	}
	if cfg.GenAI.APIKey != "file-key" {
		t.Errorf("expected api key from file, got %q", cfg.GenAI.APIKey)
	}
	if cfg.Webhooks.LeadURL != "https://hooks.example.com/lead" {
		t.Errorf("expected lead url from file, got %q", cfg.Webhooks.LeadURL)
	}
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed on missing file: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected defaults when file missing, got port %d", cfg.Server.Port)
	}
}
