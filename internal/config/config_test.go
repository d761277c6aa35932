package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopK != 3 {
		t.Fatalf("default TopK = %d, want 3", cfg.TopK)
	}
	if cfg.Chunking.MaxTokens != 500 || cfg.Chunking.OverlapTokens != 125 {
		t.Fatalf("default chunking = %+v", cfg.Chunking)
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Retry.Retries != 3 {
		t.Fatalf("default retries = %d, want 3", cfg.Retry.Retries)
	}
}

func TestLoad_OverridesLayerOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
top_k: 5
retry:
  retries: 1
  initial_delay_secs: 0.5
  backoff_factor: 3.0
  jitter: false
prompts:
  answer_prompt: "Context: %s Question: %s"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TopK != 5 {
		t.Fatalf("TopK = %d, want 5", cfg.TopK)
	}
	if cfg.Prompts.Answer != "Context: %s Question: %s" {
		t.Fatalf("answer prompt override = %q", cfg.Prompts.Answer)
	}
	// Untouched sections keep their defaults.
	if cfg.Chunking.Encoding != "o200k_base" {
		t.Fatalf("chunking encoding = %q", cfg.Chunking.Encoding)
	}

	rc := cfg.RetryConfig()
	if rc.Retries != 1 || rc.InitialDelay != 500*time.Millisecond || rc.BackoffFactor != 3.0 || rc.Jitter {
		t.Fatalf("RetryConfig() = %+v", rc)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("top_k: [not-an-int"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected error for invalid yaml")
	}
}
