package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_PORT", "")
	t.Setenv("NATS_UPLOADED_SUBJECT", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port 8080, got %q", cfg.APIPort)
	}
	if cfg.NATSUploadedSubject != "reports.uploaded" {
		t.Fatalf("expected default uploaded subject, got %q", cfg.NATSUploadedSubject)
	}
	if cfg.APIRateLimitRPS != 20 {
		t.Fatalf("expected default rate limit 20, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("API_PORT", "9100")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("API_MAX_IN_FLIGHT", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9100" {
		t.Fatalf("expected port override, got %q", cfg.APIPort)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected model override, got %q", cfg.OpenAIModel)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.APIMaxInFlight != 8 {
		t.Fatalf("expected max in flight 8, got %d", cfg.APIMaxInFlight)
	}
}

func TestLoadYAMLFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_port: \"7000\"\nopenai_model: file-model\nstorage_path: /srv/reports\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("OPENAI_MODEL", "env-model")
	t.Setenv("API_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "7000" {
		t.Fatalf("expected file port 7000, got %q", cfg.APIPort)
	}
	if cfg.StoragePath != "/srv/reports" {
		t.Fatalf("expected file storage path, got %q", cfg.StoragePath)
	}
	if cfg.OpenAIModel != "env-model" {
		t.Fatalf("env must override file, got %q", cfg.OpenAIModel)
	}
}

func TestLoadMissingConfigFileFails(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
