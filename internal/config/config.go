// Package config holds tool configuration: defaults overridden by
// PTUNE_* environment variables, which flags override in turn.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Ollama  OllamaConfig
	Storage StorageConfig
}

type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	TopP        float64
	NumThread   int
}

type StorageConfig struct {
	// HistoryDB is the tuning history database, created on first use.
	HistoryDB string
	// PromptsDB is the external prompts catalog, owned by other
	// applications and read-only here.
	PromptsDB string
}

func defaults() Config {
	return Config{
		Ollama: OllamaConfig{
			BaseURL:     "http://localhost:11434",
			Temperature: 0.6,
			TopP:        0.9,
		},
		Storage: StorageConfig{
			HistoryDB: "tune_prompt.db",
			PromptsDB: "prompts.db",
		},
	}
}

// Load returns defaults with environment overrides applied.
func Load() (Config, error) {
	cfg := defaults()
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PTUNE_OLLAMA_URL"); v != "" {
		cfg.Ollama.BaseURL = v
	}
	if v := os.Getenv("PTUNE_MODEL"); v != "" {
		cfg.Ollama.Model = v
	}
	if v := os.Getenv("PTUNE_DB"); v != "" {
		cfg.Storage.HistoryDB = v
	}
	if v := os.Getenv("PTUNE_PROMPTS_DB"); v != "" {
		cfg.Storage.PromptsDB = v
	}
	if v := os.Getenv("PTUNE_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing PTUNE_TEMPERATURE: %w", err)
		}
		cfg.Ollama.Temperature = f
	}
	if v := os.Getenv("PTUNE_TOP_P"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing PTUNE_TOP_P: %w", err)
		}
		cfg.Ollama.TopP = f
	}
	if v := os.Getenv("PTUNE_NUM_THREAD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing PTUNE_NUM_THREAD: %w", err)
		}
		cfg.Ollama.NumThread = n
	}
	return nil
}
