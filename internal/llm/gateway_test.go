package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"jarvisd/internal/search"
)

type stubProvider struct {
	name     string
	response string
	err      error
	calls    int
	failFor  int // fail the first N calls, then succeed
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	s.calls++
	if s.failFor > 0 && s.calls <= s.failFor {
		return nil, errors.New("transient")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &Response{Content: s.response, Model: s.name + "-model"}, nil
}

func testGatewayConfig() GatewayConfig {
	return GatewayConfig{MaxRetries: 2, RequestTimeout: time.Second}
}

func TestGenerate_FirstProviderWins(t *testing.T) {
	first := &stubProvider{name: "first", response: "answer from first"}
	second := &stubProvider{name: "second", response: "answer from second"}
	gw := NewGateway([]Provider{first, second}, testGatewayConfig(), slog.Default())

	result := gw.Generate(context.Background(), &Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if result.Failed {
		t.Fatalf("unexpected failure: %v", result.Errors)
	}
	if result.Text != "answer from first" {
		t.Errorf("Text = %q, want first provider's answer", result.Text)
	}
	if result.Provider != "first" {
		t.Errorf("Provider = %q, want first", result.Provider)
	}
	if second.calls != 0 {
		t.Errorf("second provider called %d times, want 0", second.calls)
	}
}

func TestGenerate_FallsThroughChain(t *testing.T) {
	broken := &stubProvider{name: "broken", err: errors.New("api down")}
	backup := &stubProvider{name: "backup", response: "backup answer"}
	gw := NewGateway([]Provider{broken, backup}, testGatewayConfig(), slog.Default())

	result := gw.Generate(context.Background(), &Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if result.Failed {
		t.Fatalf("unexpected failure: %v", result.Errors)
	}
	if result.Provider != "backup" {
		t.Errorf("Provider = %q, want backup", result.Provider)
	}
	if broken.calls != 2 {
		t.Errorf("broken provider called %d times, want 2 (MaxRetries)", broken.calls)
	}
	if len(result.Errors) != 2 {
		t.Errorf("Errors has %d entries, want 2", len(result.Errors))
	}
}

func TestGenerate_RetriesThenSucceeds(t *testing.T) {
	flaky := &stubProvider{name: "flaky", response: "eventually", failFor: 1}
	gw := NewGateway([]Provider{flaky}, testGatewayConfig(), slog.Default())

	result := gw.Generate(context.Background(), &Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if result.Failed {
		t.Fatalf("unexpected failure: %v", result.Errors)
	}
	if flaky.calls != 2 {
		t.Errorf("flaky provider called %d times, want 2", flaky.calls)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors has %d entries, want 1 for the failed attempt", len(result.Errors))
	}
}

func TestGenerate_ExhaustedChainReturnsFallback(t *testing.T) {
	down := &stubProvider{name: "down", err: errors.New("no route")}
	gw := NewGateway([]Provider{down}, testGatewayConfig(), slog.Default())

	result := gw.Generate(context.Background(), &Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if !result.Failed {
		t.Fatal("expected Failed on exhausted chain")
	}
	if result.Text != FallbackText {
		t.Errorf("Text = %q, want FallbackText", result.Text)
	}
	if len(result.Errors) == 0 {
		t.Error("expected error trail from failed attempts")
	}
}

func TestGenerate_EmptyChainReturnsFallback(t *testing.T) {
	gw := NewGateway(nil, testGatewayConfig(), slog.Default())
	if gw.Available() {
		t.Error("Available() = true for empty chain")
	}

	result := gw.Generate(context.Background(), &Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if !result.Failed || result.Text != FallbackText {
		t.Errorf("got (%v, %q), want fallback", result.Failed, result.Text)
	}
}

func TestGenerate_EmptyCompletionIsFailure(t *testing.T) {
	blank := &stubProvider{name: "blank", response: "   "}
	backup := &stubProvider{name: "backup", response: "real answer"}
	gw := NewGateway([]Provider{blank, backup}, testGatewayConfig(), slog.Default())

	result := gw.Generate(context.Background(), &Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if result.Failed {
		t.Fatalf("unexpected failure: %v", result.Errors)
	}
	if result.Provider != "backup" {
		t.Errorf("Provider = %q, want backup after blank completion", result.Provider)
	}
}

func TestBackoffDelay(t *testing.T) {
	if got := backoffDelay(0); got != retryBaseDelay {
		t.Errorf("backoffDelay(0) = %v, want %v", got, retryBaseDelay)
	}
	if got := backoffDelay(1); got != 2*retryBaseDelay {
		t.Errorf("backoffDelay(1) = %v, want %v", got, 2*retryBaseDelay)
	}
	if got := backoffDelay(20); got != retryMaxDelay {
		t.Errorf("backoffDelay(20) = %v, want cap %v", got, retryMaxDelay)
	}
}

func TestBuildUserPrompt_NoResults(t *testing.T) {
	if got := BuildUserPrompt("what is go?", nil); got != "what is go?" {
		t.Errorf("BuildUserPrompt without results = %q, want bare query", got)
	}
}

func TestBuildUserPrompt_NumbersResultsInOrder(t *testing.T) {
	results := []search.Result{
		{Title: "Go homepage", URL: "https://go.dev", Snippet: "The Go programming language."},
		{Title: "Go wiki", URL: "https://en.wikipedia.org/wiki/Go", Snippet: "Go is a statically typed language."},
	}
	prompt := BuildUserPrompt("what is go?", results)

	first := strings.Index(prompt, "[1] Go homepage")
	second := strings.Index(prompt, "[2] Go wiki")
	if first < 0 || second < 0 {
		t.Fatalf("prompt missing numbered entries:\n%s", prompt)
	}
	if first > second {
		t.Error("results numbered out of gateway order")
	}
	if !strings.Contains(prompt, "Question: what is go?") {
		t.Error("prompt missing the question")
	}
	if !strings.Contains(prompt, "bracketed number") {
		t.Error("prompt missing the citation instruction")
	}
}

func TestProviderConfig_Validate(t *testing.T) {
	cfg := ProviderConfig{Model: "m"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when both APIKey and BaseURL are empty")
	}
	cfg.BaseURL = "http://localhost:11434/v1"
	if err := cfg.Validate(); err != nil {
		t.Errorf("BaseURL alone should satisfy Validate: %v", err)
	}
	cfg = ProviderConfig{APIKey: "k"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when Model is empty")
	}
}
