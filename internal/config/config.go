package config

import (
	"fmt"
	"os"
	"time"

	"github.com/uet-rag/prospectus/internal/util"
	"github.com/uet-rag/prospectus/pkg/graph"

	"gopkg.in/yaml.v3"
)

// ChunkingConfig controls how documents are split before ingestion.
type ChunkingConfig struct {
	Encoding      string `yaml:"encoding"`
	MaxTokens     int    `yaml:"max_tokens"`
	OverlapTokens int    `yaml:"overlap_tokens"`
}

// RetryConfig mirrors util.RetryConfig with yaml-friendly fields.
type RetryConfig struct {
	Retries          int     `yaml:"retries"`
	InitialDelaySecs float64 `yaml:"initial_delay_secs"`
	BackoffFactor    float64 `yaml:"backoff_factor"`
	Jitter           bool    `yaml:"jitter"`
}

// PromptsConfig holds optional overrides for the built-in prompts. Empty
// fields keep the defaults.
type PromptsConfig struct {
	Extraction string `yaml:"extraction_prompt"`
	Guardrail  string `yaml:"guardrail_prompt"`
	Answer     string `yaml:"answer_prompt"`
}

// Config is the application tuning configuration loaded from a YAML file.
// Secrets and infrastructure endpoints stay in the environment; this file
// only carries application logic knobs.
type Config struct {
	TopK        int            `yaml:"top_k"`
	EntityTypes []string       `yaml:"entity_types"`
	Chunking    ChunkingConfig `yaml:"chunking"`
	Retry       RetryConfig    `yaml:"retry"`
	Prompts     PromptsConfig  `yaml:"prompts"`
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{
		TopK:        3,
		EntityTypes: graph.DefaultEntityTypes,
		Chunking: ChunkingConfig{
			Encoding:      "o200k_base",
			MaxTokens:     500,
			OverlapTokens: 125,
		},
		Retry: RetryConfig{
			Retries:          3,
			InitialDelaySecs: 2.0,
			BackoffFactor:    2.0,
			Jitter:           true,
		},
	}
}

// Load reads the YAML config at path, layered over Default. An empty path
// or a missing file returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// RetryConfig converts the yaml retry settings to the runtime policy.
func (c Config) RetryConfig() util.RetryConfig {
	return util.RetryConfig{
		Retries:       c.Retry.Retries,
		InitialDelay:  time.Duration(c.Retry.InitialDelaySecs * float64(time.Second)),
		BackoffFactor: c.Retry.BackoffFactor,
		Jitter:        c.Retry.Jitter,
	}
}
