package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"jarvisd/internal/config"
	"jarvisd/internal/history"
	"jarvisd/internal/intent"
	"jarvisd/internal/llm"
	"jarvisd/internal/logger"
	"jarvisd/internal/router"
	"jarvisd/internal/search"
	"jarvisd/internal/shield"
)

// app holds the assembled pipeline plus the handles that need closing.
type app struct {
	router *router.Router
	config *config.Config
	audit  *logger.AuditLogger
	store  *history.Store
	log    *slog.Logger
}

func (a *app) Close() {
	if a.audit != nil {
		_ = a.audit.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

// buildApp wires shield, classifier, gateways, history, and audit log
// into a router per the loaded configuration.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if auditPath != "" {
		cfg.Log.AuditPath = auditPath
	}
	if noSearch {
		cfg.Search.Enabled = false
	}

	log := newLogger(cfg.Log.Level)

	signatures, _, err := shield.LoadPacks(cfg.PacksDir, shield.BuiltinSignatures())
	if err != nil {
		return nil, fmt.Errorf("failed to load signature packs: %w", err)
	}
	sh := shield.New(signatures, log)

	rules, err := intent.LoadRulePacks(cfg.IntentsDir, intent.BuiltinRules())
	if err != nil {
		return nil, fmt.Errorf("failed to load intent rule packs: %w", err)
	}
	classifier := intent.NewClassifier(rules)

	var searcher router.SearchGateway
	if cfg.Search.Enabled {
		searchCfg := search.DefaultGatewayConfig()
		if cfg.Search.TimeoutSeconds > 0 {
			searchCfg.ProviderTimeout = time.Duration(cfg.Search.TimeoutSeconds) * time.Second
		}
		providers := []search.Provider{search.NewDuckDuckGoProvider("", nil)}
		if cfg.Search.SearxURL != "" {
			providers = append(providers, search.NewSearxProvider(cfg.Search.SearxURL, nil))
		}
		searcher = search.NewGateway(providers, searchCfg, log)
	}

	generators, err := buildProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}
	generator := llm.NewGateway(generators, llm.DefaultGatewayConfig(), log)

	opts := router.DefaultOptions()
	opts.FactualAlwaysSearches = cfg.Routing.FactualAlwaysSearches
	opts.SearchEnabled = cfg.Search.Enabled
	opts.MaxResults = cfg.Search.MaxResults
	opts.MinRelevance = cfg.Search.MinRelevance
	opts.AssistantName = cfg.Routing.AssistantName
	opts.ContextTurns = cfg.History.ContextTurns

	rt := router.New(sh, classifier, searcher, generator, nil, opts, log)

	a := &app{router: rt, config: cfg, log: log}

	if cfg.Log.AuditPath != "" {
		audit, err := logger.New(cfg.Log.AuditPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		a.audit = audit
		rt.WithAudit(audit)
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			// History is an enrichment, not a dependency.
			log.Warn("history store unavailable", "error", err)
		} else {
			a.store = store
			rt.WithHistory(historyAdapter{store})
		}
	}

	return a, nil
}

// buildProviders constructs the generation chain in configured order.
func buildProviders(ctx context.Context, cfg *config.Config) ([]llm.Provider, error) {
	var providers []llm.Provider
	for i, pc := range cfg.Providers {
		base := llm.ProviderConfig{
			APIKey:      pc.APIKey,
			Model:       pc.Model,
			BaseURL:     pc.BaseURL,
			MaxTokens:   pc.MaxTokens,
			Temperature: pc.Temperature,
		}
		switch pc.Kind {
		case "anthropic":
			p, err := llm.NewAnthropicProvider(base)
			if err != nil {
				return nil, fmt.Errorf("provider %d: %w", i, err)
			}
			providers = append(providers, p)
		case "openai":
			p, err := llm.NewOpenAIProvider(base)
			if err != nil {
				return nil, fmt.Errorf("provider %d: %w", i, err)
			}
			providers = append(providers, p)
		case "gemini":
			p, err := llm.NewGeminiProvider(ctx, base)
			if err != nil {
				return nil, fmt.Errorf("provider %d: %w", i, err)
			}
			providers = append(providers, p)
		default:
			return nil, fmt.Errorf("provider %d: unknown kind %q", i, pc.Kind)
		}
	}
	return providers, nil
}

// historyAdapter narrows history.Store to the router's interface.
type historyAdapter struct {
	store *history.Store
}

func (h historyAdapter) Append(ctx context.Context, sessionID, role, content string) error {
	return h.store.Append(ctx, sessionID, role, content)
}

func (h historyAdapter) Recent(ctx context.Context, sessionID string, limit int) ([]router.Turn, error) {
	turns, err := h.store.Recent(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]router.Turn, len(turns))
	for i, t := range turns {
		out[i] = router.Turn{Role: t.Role, Content: t.Content}
	}
	return out, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
