// Package llm wraps generative-model backends behind the same degradation
// contract as search: an ordered provider chain with bounded retries, and a
// gateway that always hands back usable text, even when every backend is
// down.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation sent to a provider.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral completion request.
type Request struct {
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Messages     []Message `json:"messages"`
	MaxTokens    int       `json:"max_tokens,omitempty"`
	Temperature  float64   `json:"temperature,omitempty"`
}

// Response is a provider-neutral completion response.
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// Provider is a single generative-model backend.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// ProviderConfig is the configuration shared by all providers.
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Validate checks the fields every provider needs.
func (c *ProviderConfig) Validate() error {
	if c.APIKey == "" && c.BaseURL == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

func (c *ProviderConfig) withDefaults() ProviderConfig {
	out := *c
	if out.MaxTokens <= 0 {
		out.MaxTokens = 1024
	}
	if out.Temperature == 0 {
		out.Temperature = 0.7
	}
	if out.Timeout <= 0 {
		out.Timeout = 60 * time.Second
	}
	return out
}
