package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DOCSUM_PROVIDER", "DOCSUM_MODEL", "DOCSUM_BASE_URL", "DOCSUM_CHUNK_SIZE",
		"DOCSUM_MAX_RETRIES", "DOCSUM_REQUEST_TIMEOUT", "DOCSUM_DETECT_LANGUAGE",
		"DOCSUM_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderOpenAI || cfg.Model != "gpt-4o-mini" {
		t.Errorf("unexpected provider/model %s/%s", cfg.Provider, cfg.Model)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("expected key from OPENAI_API_KEY, got %q", cfg.APIKey)
	}
	if cfg.DirectThreshold != 12000 || cfg.ChunkSize != 10000 {
		t.Errorf("unexpected routing defaults %d/%d", cfg.DirectThreshold, cfg.ChunkSize)
	}
	if cfg.PriceInputPer1K != 0.00015 || cfg.PriceOutputPer1K != 0.0006 {
		t.Errorf("unexpected tariff %v/%v", cfg.PriceInputPer1K, cfg.PriceOutputPer1K)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "docsum.yaml")
	yaml := "provider: Anthropic\nchunk_size: 5000\nmax_retries: 5\nrequest_timeout: 30s\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("DOCSUM_MAX_RETRIES", "1")
	t.Setenv("DOCSUM_DETECT_LANGUAGE", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected normalized provider, got %q", cfg.Provider)
	}
	if cfg.Model != DefaultModel(ProviderAnthropic) || cfg.APIKey != "ak-test" {
		t.Errorf("unexpected model/key %q/%q", cfg.Model, cfg.APIKey)
	}
	if cfg.ChunkSize != 5000 {
		t.Errorf("expected chunk size from file, got %d", cfg.ChunkSize)
	}
	if cfg.MaxRetries != 1 {
		t.Errorf("expected env to override file, got %d", cfg.MaxRetries)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.DetectLanguage {
		t.Error("expected language detection disabled")
	}
	if cfg.DirectThreshold != 12000 {
		t.Errorf("expected untouched default, got %d", cfg.DirectThreshold)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	base := Defaults()
	base.APIKey = "k"
	base.Model = "m"

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Provider = "llama" }},
		{"missing key", func(c *Config) { c.APIKey = "" }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative price", func(c *Config) { c.PriceOutputPer1K = -1 }},
		{"zero concurrency", func(c *Config) { c.MaxConcurrentChunks = 0 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"too many retries", func(c *Config) { c.MaxRetries = MaxRetriesLimit + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if err := base.Validate(); err != nil {
		t.Errorf("base config should validate: %v", err)
	}
}

func TestValidateServer(t *testing.T) {
	cfg := Defaults()
	cfg.APIKey = "k"
	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected error without server api key")
	}
	cfg.ServerAPIKey = "secret"
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("ValidateServer: %v", err)
	}
	cfg.WorkerCount = 0
	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected error for zero workers")
	}
}
