package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("BaseURL = %q", cfg.Ollama.BaseURL)
	}
	if cfg.Ollama.Temperature != 0.6 || cfg.Ollama.TopP != 0.9 {
		t.Errorf("sampling defaults = %+v", cfg.Ollama)
	}
	if cfg.Storage.HistoryDB != "tune_prompt.db" || cfg.Storage.PromptsDB != "prompts.db" {
		t.Errorf("storage defaults = %+v", cfg.Storage)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PTUNE_OLLAMA_URL", "http://127.0.0.1:9999")
	t.Setenv("PTUNE_MODEL", "gemma3:1b")
	t.Setenv("PTUNE_DB", "/tmp/history.db")
	t.Setenv("PTUNE_TEMPERATURE", "0.2")
	t.Setenv("PTUNE_NUM_THREAD", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ollama.BaseURL != "http://127.0.0.1:9999" {
		t.Errorf("BaseURL = %q", cfg.Ollama.BaseURL)
	}
	if cfg.Ollama.Model != "gemma3:1b" {
		t.Errorf("Model = %q", cfg.Ollama.Model)
	}
	if cfg.Storage.HistoryDB != "/tmp/history.db" {
		t.Errorf("HistoryDB = %q", cfg.Storage.HistoryDB)
	}
	if cfg.Ollama.Temperature != 0.2 {
		t.Errorf("Temperature = %v", cfg.Ollama.Temperature)
	}
	if cfg.Ollama.NumThread != 8 {
		t.Errorf("NumThread = %d", cfg.Ollama.NumThread)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("PTUNE_TEMPERATURE", "warm")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid PTUNE_TEMPERATURE")
	}
}
