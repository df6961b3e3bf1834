package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider serves completions from the OpenAI API or any
// OpenAI-compatible endpoint. Setting BaseURL to a local Ollama or
// LM Studio address is the supported way to run fully offline.
type OpenAIProvider struct {
	client *openai.Client
	config ProviderConfig
}

// NewOpenAIProvider creates the provider.
func NewOpenAIProvider(config ProviderConfig) (*OpenAIProvider, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("openai config: %w", err)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{client: &client, config: config}, nil
}

func (p *OpenAIProvider) Name() string { return "openai" }

// Complete performs a non-streaming chat completion request.
func (p *OpenAIProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.config.Model),
		Messages: messages,
	}
	if max := p.maxTokens(req); max > 0 {
		params.MaxTokens = openai.Int(int64(max))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	} else if p.config.Temperature > 0 {
		params.Temperature = openai.Float(p.config.Temperature)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai complete: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai complete: empty choices")
	}

	return &Response{
		Content: completion.Choices[0].Message.Content,
		Model:   completion.Model,
	}, nil
}

func (p *OpenAIProvider) maxTokens(req *Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return p.config.MaxTokens
}
