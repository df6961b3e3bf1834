package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// FallbackText is returned when every provider in the chain has been
// exhausted. It is the last line of defense: the caller always gets a
// usable answer string.
const FallbackText = "I'm sorry, I'm having trouble reaching my language models right now. " +
	"Please try again in a moment."

// GenerateResult reports the outcome of a generation attempt. Failed
// is set when the chain was exhausted and Text holds FallbackText;
// Errors carries one entry per failed provider attempt either way.
type GenerateResult struct {
	Text     string
	Failed   bool
	Provider string
	Model    string
	Errors   []string
}

// GatewayConfig tunes the generation chain.
type GatewayConfig struct {
	// MaxRetries is the number of attempts per provider before moving
	// to the next one in the chain.
	MaxRetries int
	// RequestTimeout bounds a single provider call.
	RequestTimeout time.Duration
}

// DefaultGatewayConfig returns the standard chain tuning.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		MaxRetries:     2,
		RequestTimeout: 60 * time.Second,
	}
}

// Gateway walks an ordered provider chain until one of them produces a
// completion. It never returns an error: a fully failed chain yields a
// GenerateResult with Failed set and the apology text.
type Gateway struct {
	providers []Provider
	config    GatewayConfig
	logger    *slog.Logger
}

// NewGateway creates a gateway over the given chain. Order matters:
// earlier providers are preferred.
func NewGateway(providers []Provider, config GatewayConfig, logger *slog.Logger) *Gateway {
	if config.MaxRetries <= 0 {
		config.MaxRetries = DefaultGatewayConfig().MaxRetries
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultGatewayConfig().RequestTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{providers: providers, config: config, logger: logger}
}

// Available reports whether at least one provider is configured.
func (g *Gateway) Available() bool { return len(g.providers) > 0 }

// Generate runs the request through the chain. Each provider gets up
// to MaxRetries attempts with exponential backoff between them before
// the gateway falls through to the next provider.
func (g *Gateway) Generate(ctx context.Context, req *Request) GenerateResult {
	result := GenerateResult{}

	for _, provider := range g.providers {
		for attempt := 0; attempt < g.config.MaxRetries; attempt++ {
			if attempt > 0 {
				if !sleepCtx(ctx, backoffDelay(attempt-1)) {
					result.Errors = append(result.Errors, "generation cancelled")
					break
				}
			}

			resp, err := g.tryProvider(ctx, provider, req)
			if err == nil {
				result.Text = strings.TrimSpace(resp.Content)
				result.Provider = provider.Name()
				result.Model = resp.Model
				return result
			}

			g.logger.Warn("provider attempt failed",
				"provider", provider.Name(),
				"attempt", attempt+1,
				"error", err)
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s attempt %d: %v", provider.Name(), attempt+1, err))

			if ctx.Err() != nil {
				break
			}
		}
	}

	result.Text = FallbackText
	result.Failed = true
	return result
}

func (g *Gateway) tryProvider(ctx context.Context, provider Provider, req *Request) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.config.RequestTimeout)
	defer cancel()

	resp, err := provider.Complete(attemptCtx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return nil, fmt.Errorf("empty completion")
	}
	return resp, nil
}
