// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigDir   = ".jarvisd"
	DefaultConfigFile  = "config.yaml"
	DefaultLogFile     = "audit.jsonl"
	DefaultHistoryFile = "history.db"
	DefaultPacksDir    = "signatures"
	DefaultIntentsDir  = "intents"
)

// Config holds all application configuration. Precedence: defaults,
// then the YAML file, then JARVIS_* environment variables.
type Config struct {
	// Providers is the generation fallback chain, in preference order.
	Providers []ProviderConfig `yaml:"providers"`

	Search  SearchConfig  `yaml:"search"`
	Routing RoutingConfig `yaml:"routing"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`

	// PacksDir holds YAML signature packs merged into the built-in
	// threat signature table.
	PacksDir string `envconfig:"JARVIS_PACKS_DIR" yaml:"packs_dir"`

	// IntentsDir holds YAML rule packs merged into the built-in
	// intent classification table.
	IntentsDir string `envconfig:"JARVIS_INTENTS_DIR" yaml:"intents_dir"`

	// ConfigDir is resolved at load time, not read from the file.
	ConfigDir string `yaml:"-" ignored:"true"`
}

// ProviderConfig configures one entry in the generation chain.
type ProviderConfig struct {
	// Kind selects the implementation: anthropic, openai, gemini.
	Kind        string  `yaml:"kind"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// SearchConfig holds web search settings.
type SearchConfig struct {
	Enabled        bool    `envconfig:"JARVIS_SEARCH_ENABLED" yaml:"enabled"`
	MaxResults     int     `envconfig:"JARVIS_SEARCH_MAX_RESULTS" yaml:"max_results"`
	TimeoutSeconds int     `envconfig:"JARVIS_SEARCH_TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	SearxURL       string  `envconfig:"JARVIS_SEARX_URL" yaml:"searx_url"`
	MinRelevance   float64 `envconfig:"JARVIS_SEARCH_MIN_RELEVANCE" yaml:"min_relevance"`
}

// RoutingConfig holds routing policy knobs.
type RoutingConfig struct {
	// FactualAlwaysSearches forces a search attempt for every factual
	// query. When false, only queries with recency markers search.
	FactualAlwaysSearches bool `envconfig:"JARVIS_FACTUAL_ALWAYS_SEARCHES" yaml:"factual_always_searches"`
	// AssistantName is used by the canned identity answers.
	AssistantName string `envconfig:"JARVIS_ASSISTANT_NAME" yaml:"assistant_name"`
}

// HistoryConfig holds conversation persistence settings.
type HistoryConfig struct {
	Enabled bool   `envconfig:"JARVIS_HISTORY_ENABLED" yaml:"enabled"`
	Path    string `envconfig:"JARVIS_HISTORY_PATH" yaml:"path"`
	// ContextTurns is how many stored turns enrich the prompt.
	ContextTurns int `envconfig:"JARVIS_HISTORY_CONTEXT_TURNS" yaml:"context_turns"`
}

// LogConfig holds audit and diagnostic logging settings.
type LogConfig struct {
	AuditPath string `envconfig:"JARVIS_AUDIT_LOG" yaml:"audit_path"`
	Level     string `envconfig:"JARVIS_LOG_LEVEL" yaml:"level"`
}

// Load resolves the configuration. An empty path means
// ~/.jarvisd/config.yaml; a missing file is not an error.
func Load(path string) (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	configDir := filepath.Join(homeDir, DefaultConfigDir)
	if err := ensureDir(configDir); err != nil {
		return nil, err
	}

	cfg := &Config{ConfigDir: configDir}
	setDefaults(cfg, configDir)

	if path == "" {
		path = filepath.Join(configDir, DefaultConfigFile)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	applyEnvProviders(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	for i, p := range c.Providers {
		switch p.Kind {
		case "anthropic", "openai", "gemini":
		default:
			return fmt.Errorf("provider %d: unknown kind %q", i, p.Kind)
		}
		if p.Model == "" {
			return fmt.Errorf("provider %d (%s): model is required", i, p.Kind)
		}
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search max_results must be positive")
	}
	if c.History.ContextTurns < 0 {
		return fmt.Errorf("history context_turns must not be negative")
	}
	return nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config, configDir string) {
	cfg.Search = SearchConfig{
		Enabled:        true,
		MaxResults:     5,
		TimeoutSeconds: 6,
		MinRelevance:   0.1,
	}
	cfg.Routing = RoutingConfig{
		FactualAlwaysSearches: true,
		AssistantName:         "Jarvis",
	}
	cfg.History = HistoryConfig{
		Enabled:      true,
		Path:         filepath.Join(configDir, DefaultHistoryFile),
		ContextTurns: 10,
	}
	cfg.Log = LogConfig{
		AuditPath: filepath.Join(configDir, DefaultLogFile),
		Level:     "info",
	}
	cfg.PacksDir = filepath.Join(configDir, DefaultPacksDir)
	cfg.IntentsDir = filepath.Join(configDir, DefaultIntentsDir)
}

// applyEnvProviders builds a provider chain from well-known API key
// variables when the file configures none, so a bare `ANTHROPIC_API_KEY`
// is enough to get started.
func applyEnvProviders(cfg *Config) {
	if len(cfg.Providers) > 0 {
		return
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			Kind: "anthropic", APIKey: key, Model: "claude-sonnet-4-5",
		})
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			Kind: "openai", APIKey: key, Model: "gpt-4o-mini",
		})
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			Kind: "gemini", APIKey: key, Model: "gemini-2.0-flash",
		})
	}
	if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			model = "llama3.2"
		}
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			Kind: "openai", BaseURL: base, Model: model,
		})
	}
}

func ensureDir(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0700)
	}
	return nil
}
