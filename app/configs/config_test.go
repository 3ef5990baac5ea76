package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaultsFillsEmptyConfig(t *testing.T) {
	cfg := Config{}

	applyDefaults(&cfg)

	if cfg.Server.Port != 8000 {
		t.Fatalf("unexpected port: %d", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected allowed origins: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Agent.Name != "TaskMate" {
		t.Fatalf("unexpected agent name: %s", cfg.Agent.Name)
	}
	if cfg.LLM.MaxToolRounds != 6 {
		t.Fatalf("unexpected max tool rounds: %d", cfg.LLM.MaxToolRounds)
	}
	if cfg.LLM.RequestTimeoutSec != 120 {
		t.Fatalf("unexpected request timeout: %d", cfg.LLM.RequestTimeoutSec)
	}
	if cfg.Task.SimilarityThreshold != 0.7 {
		t.Fatalf("unexpected similarity threshold: %v", cfg.Task.SimilarityThreshold)
	}
	if cfg.Task.TranscriptMaxTurns != 40 {
		t.Fatalf("unexpected transcript cap: %d", cfg.Task.TranscriptMaxTurns)
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Server: ServerConfig{Port: 9000, AllowedOrigins: []string{"https://tasks.example.com"}},
		LLM:    LLMConfig{Model: "gpt-4o", MaxToolRounds: 3, RequestTimeoutSec: 30},
		Task:   TaskConfig{SimilarityThreshold: 0.85, MemoryMaxRunes: 400, TranscriptMaxTurns: 10},
	}

	applyDefaults(&cfg)

	if cfg.Server.Port != 9000 {
		t.Fatalf("port overridden: %d", cfg.Server.Port)
	}
	if cfg.Server.AllowedOrigins[0] != "https://tasks.example.com" {
		t.Fatalf("origins overridden: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.LLM.Model != "gpt-4o" || cfg.LLM.MaxToolRounds != 3 {
		t.Fatalf("llm config overridden: %+v", cfg.LLM)
	}
	if cfg.Task.SimilarityThreshold != 0.85 {
		t.Fatalf("threshold overridden: %v", cfg.Task.SimilarityThreshold)
	}
}

func TestApplyDefaultsReadsCORSOriginsEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Config{}
	applyDefaults(&cfg)

	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Fatalf("unexpected origins: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected second origin: %s", cfg.Server.AllowedOrigins[1])
	}
}

func TestManagerCreatesFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.json")

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatalf("new manager failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	cfg := mgr.Get()
	if cfg.Server.Port != 8000 {
		t.Fatalf("unexpected default port: %d", cfg.Server.Port)
	}

	updated, err := mgr.Update(func(c *Config) {
		c.Server.Port = 8100
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Server.Port != 8100 {
		t.Fatalf("update not applied: %d", updated.Server.Port)
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Get().Server.Port != 8100 {
		t.Fatalf("update not persisted: %d", reloaded.Get().Server.Port)
	}
}
