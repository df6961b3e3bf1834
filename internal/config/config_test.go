package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !cfg.Search.Enabled {
		t.Error("search should be enabled by default")
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("MaxResults = %d, want 5", cfg.Search.MaxResults)
	}
	if !cfg.Routing.FactualAlwaysSearches {
		t.Error("FactualAlwaysSearches should default to true")
	}
	if cfg.Routing.AssistantName != "Jarvis" {
		t.Errorf("AssistantName = %q", cfg.Routing.AssistantName)
	}
	if cfg.History.ContextTurns != 10 {
		t.Errorf("ContextTurns = %d, want 10", cfg.History.ContextTurns)
	}

	// Config dir must have been created.
	if _, err := os.Stat(cfg.ConfigDir); err != nil {
		t.Errorf("config dir not created: %v", err)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "config.yaml")
	content := `
providers:
  - kind: anthropic
    api_key: test-key
    model: claude-sonnet-4-5
search:
  enabled: true
  max_results: 3
routing:
  factual_always_searches: false
  assistant_name: Edith
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Providers) != 1 || cfg.Providers[0].Kind != "anthropic" {
		t.Fatalf("Providers = %+v", cfg.Providers)
	}
	if cfg.Search.MaxResults != 3 {
		t.Errorf("MaxResults = %d, want 3", cfg.Search.MaxResults)
	}
	if cfg.Routing.FactualAlwaysSearches {
		t.Error("factual_always_searches: false not honored")
	}
	if cfg.Routing.AssistantName != "Edith" {
		t.Errorf("AssistantName = %q", cfg.Routing.AssistantName)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "config.yaml")
	if err := os.WriteFile(path, []byte("search:\n  enabled: true\n  max_results: 3\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("JARVIS_SEARCH_MAX_RESULTS", "7")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.MaxResults != 7 {
		t.Errorf("MaxResults = %d, want env override 7", cfg.Search.MaxResults)
	}
}

func TestLoad_EnvProviderChain(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OLLAMA_BASE_URL", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Providers) != 1 {
		t.Fatalf("Providers = %+v, want single anthropic entry", cfg.Providers)
	}
	if cfg.Providers[0].Kind != "anthropic" || cfg.Providers[0].APIKey != "sk-ant-test" {
		t.Errorf("provider = %+v", cfg.Providers[0])
	}
}

func TestValidate_RejectsUnknownProviderKind(t *testing.T) {
	cfg := &Config{
		Providers: []ProviderConfig{{Kind: "cohere", Model: "m"}},
		Search:    SearchConfig{MaxResults: 5},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider kind")
	}
}

func TestValidate_RequiresModel(t *testing.T) {
	cfg := &Config{
		Providers: []ProviderConfig{{Kind: "openai"}},
		Search:    SearchConfig{MaxResults: 5},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for provider without model")
	}
}
