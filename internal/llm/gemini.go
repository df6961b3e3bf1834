package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider serves completions from the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	config ProviderConfig
}

// NewGeminiProvider creates the provider. The client is constructed
// eagerly so configuration errors surface at startup rather than on
// the first query.
func NewGeminiProvider(ctx context.Context, config ProviderConfig) (*GeminiProvider, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("gemini config: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &GeminiProvider{client: client, config: config}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Complete performs a non-streaming generation request.
func (p *GeminiProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := genai.RoleUser
		if msg.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, genai.Role(role)))
	}

	config := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if max := p.maxTokens(req); max > 0 {
		config.MaxOutputTokens = int32(max)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	} else if p.config.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(p.config.Temperature))
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.config.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini complete: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini complete: empty response")
	}

	return &Response{Content: text, Model: p.config.Model}, nil
}

func (p *GeminiProvider) maxTokens(req *Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return p.config.MaxTokens
}
