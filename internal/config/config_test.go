package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Generation.ContextWindow != 10 {
		t.Errorf("ContextWindow = %d, want 10", cfg.Generation.ContextWindow)
	}
	if cfg.Generation.MaxOutputTokens != 300 {
		t.Errorf("MaxOutputTokens = %d, want 300", cfg.Generation.MaxOutputTokens)
	}
	if cfg.Generation.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Generation.Timeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CONTEXT_WINDOW", "4")
	t.Setenv("GENERATE_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.Generation.ContextWindow != 4 {
		t.Errorf("ContextWindow = %d, want 4", cfg.Generation.ContextWindow)
	}
	if cfg.Generation.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Generation.Timeout)
	}
}

func TestLoadIgnoresGarbageNumbers(t *testing.T) {
	t.Setenv("CONTEXT_WINDOW", "lots")
	t.Setenv("GENERATE_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generation.ContextWindow != 10 {
		t.Errorf("ContextWindow = %d, want fallback 10", cfg.Generation.ContextWindow)
	}
	if cfg.Generation.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want fallback 30s", cfg.Generation.Timeout)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("CONTEXT_WINDOW", "-1")
	if _, err := Load(); err == nil {
		t.Error("expected error for negative context window")
	}
}

func TestMissingAPIKeyIsNotAStartupError(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load must succeed without a credential: %v", err)
	}
	if cfg.Generation.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.Generation.APIKey)
	}
}
