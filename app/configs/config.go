package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Config struct {
	Server ServerConfig `json:"server"`
	Agent  AgentConfig  `json:"agent"`
	LLM    LLMConfig    `json:"llm"`
	Task   TaskConfig   `json:"task"`
}

type ServerConfig struct {
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type AgentConfig struct {
	Name string `json:"name"`
}

type LLMConfig struct {
	Model             string `json:"model"`
	BaseURL           string `json:"base_url,omitempty"`
	MaxToolRounds     int    `json:"max_tool_rounds"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type TaskConfig struct {
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MemoryMaxRunes      int     `json:"memory_max_runes"`
	TranscriptMaxTurns  int     `json:"transcript_max_turns"`
}

type Manager struct {
	path string
	mu   sync.RWMutex
	cfg  Config
}

func DefaultPath() string {
	return filepath.Join("config", "config.json")
}

// APIKey reads the OpenAI credential from the environment. Secrets never
// live in the config file.
func APIKey() string {
	return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
}

func NewManager(path string) (*Manager, error) {
	cfg := defaultConfig()
	mgr := &Manager{
		path: path,
		cfg:  cfg,
	}
	if err := mgr.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	if err := mgr.save(); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Update(apply func(*Config)) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply(&m.cfg)
	applyDefaults(&m.cfg)
	if err := m.saveLocked(); err != nil {
		return Config{}, err
	}
	return m.cfg, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return err
	}
	m.cfg = fileCfg
	applyDefaults(&m.cfg)
	return nil
}

func (m *Manager) save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:           8000,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Agent: AgentConfig{
			Name: "TaskMate",
		},
		LLM: LLMConfig{
			Model:             "gpt-4o-mini",
			MaxToolRounds:     6,
			RequestTimeoutSec: 120,
		},
		Task: TaskConfig{
			SimilarityThreshold: 0.7,
			MemoryMaxRunes:      1200,
			TranscriptMaxTurns:  40,
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		cfg.Server.Port = 8000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if origins := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); origins != "" {
		parts := strings.Split(origins, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			cfg.Server.AllowedOrigins = cleaned
		}
	}
	if strings.TrimSpace(cfg.Agent.Name) == "" {
		cfg.Agent.Name = "TaskMate"
	}
	if strings.TrimSpace(cfg.LLM.Model) == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.MaxToolRounds <= 0 {
		cfg.LLM.MaxToolRounds = 6
	}
	if cfg.LLM.RequestTimeoutSec <= 0 {
		cfg.LLM.RequestTimeoutSec = 120
	}
	if cfg.Task.SimilarityThreshold <= 0 || cfg.Task.SimilarityThreshold > 1 {
		cfg.Task.SimilarityThreshold = 0.7
	}
	if cfg.Task.MemoryMaxRunes <= 0 {
		cfg.Task.MemoryMaxRunes = 1200
	}
	if cfg.Task.TranscriptMaxTurns <= 0 {
		cfg.Task.TranscriptMaxTurns = 40
	}
}
