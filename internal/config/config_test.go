package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DOCCHECK_CONFIG_FILE", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("LLM_PROVIDER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.MaxMissingChapters != 3 {
		t.Errorf("expected max missing 3, got %d", cfg.MaxMissingChapters)
	}
	if !reflect.DeepEqual(cfg.CriticalChapters, []string{"reliability", "safety"}) {
		t.Errorf("unexpected critical chapters %v", cfg.CriticalChapters)
	}
	if cfg.Retry.MaxRetries != 10 || cfg.Retry.InitialDelay != time.Second || cfg.Retry.MaxDelay != 30*time.Second {
		t.Errorf("unexpected retry defaults %+v", cfg.Retry)
	}
	if cfg.LLMProvider != ProviderNone {
		t.Errorf("expected provider none without a key, got %q", cfg.LLMProvider)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DOCCHECK_CONFIG_FILE", "")
	t.Setenv("PORT", "9999")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("CRITICAL_CHAPTERS", " security, ,reliability ")
	t.Setenv("RETRY_MAX_RETRIES", "2")
	t.Setenv("RETRY_INITIAL_DELAY", "250ms")
	t.Setenv("RETRY_ENABLE_JITTER", "false")
	t.Setenv("STRUCTURE_CHECK_ENABLED", "false")
	t.Setenv("WORKER_COUNT", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("expected port 9999, got %q", cfg.Port)
	}
	if cfg.LLMProvider != ProviderAnthropic {
		t.Errorf("expected anthropic provider when a key is set, got %q", cfg.LLMProvider)
	}
	if !reflect.DeepEqual(cfg.CriticalChapters, []string{"security", "reliability"}) {
		t.Errorf("unexpected critical chapters %v", cfg.CriticalChapters)
	}
	if cfg.Retry.MaxRetries != 2 || cfg.Retry.InitialDelay != 250*time.Millisecond || cfg.Retry.EnableJitter {
		t.Errorf("unexpected retry config %+v", cfg.Retry)
	}
	if cfg.StructureCheckEnabled {
		t.Error("expected structure check disabled")
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected invalid worker count to fall back to 4, got %d", cfg.WorkerCount)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doccheck.yaml")
	yml := `
port: "7000"
llm:
  provider: openai
  base_url: ${TEST_LLM_URL}
  model: qwen
  timeout: 5s
retry:
  max_retries: 4
  max_delay: 10s
structure:
  critical_chapters: [testing, safety]
  max_missing_chapters: 1
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCCHECK_CONFIG_FILE", path)
	t.Setenv("TEST_LLM_URL", "http://llm:8080")
	t.Setenv("PORT", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("CRITICAL_CHAPTERS", "")
	os.Unsetenv("CRITICAL_CHAPTERS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "7000" {
		t.Errorf("expected port from file, got %q", cfg.Port)
	}
	if cfg.LLMProvider != ProviderOpenAI || cfg.LLMBaseURL != "http://llm:8080" || cfg.LLMModel != "qwen" {
		t.Errorf("unexpected llm settings %q %q %q", cfg.LLMProvider, cfg.LLMBaseURL, cfg.LLMModel)
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("expected 5s llm timeout, got %v", cfg.LLMTimeout)
	}
	if cfg.Retry.MaxRetries != 4 || cfg.Retry.MaxDelay != 10*time.Second || cfg.Retry.InitialDelay != time.Second {
		t.Errorf("unexpected retry config %+v", cfg.Retry)
	}
	if !reflect.DeepEqual(cfg.CriticalChapters, []string{"testing", "safety"}) || cfg.MaxMissingChapters != 1 {
		t.Errorf("unexpected structure settings %v %d", cfg.CriticalChapters, cfg.MaxMissingChapters)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("retry: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DOCCHECK_CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.APIKey = "k"
	valid.LLMProvider = ProviderNone

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing api key", func(c *Config) { c.APIKey = "" }, "DOCCHECK_API_KEY"},
		{"anthropic without key", func(c *Config) { c.LLMProvider = ProviderAnthropic }, "ANTHROPIC_API_KEY"},
		{"openai without model", func(c *Config) { c.LLMProvider = ProviderOpenAI }, "LLM_MODEL"},
		{"unknown provider", func(c *Config) { c.LLMProvider = "bard" }, "unknown LLM_PROVIDER"},
		{"bad retry", func(c *Config) { c.Retry.BackoffFactor = 0.5 }, "retry"},
		{"blank critical chapter", func(c *Config) { c.CriticalChapters = []string{"safety", " "} }, "critical chapter 1"},
		{"negative tolerance", func(c *Config) { c.MaxMissingChapters = -1 }, "MAX_MISSING_CHAPTERS"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			cfg.CriticalChapters = append([]string(nil), valid.CriticalChapters...)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
