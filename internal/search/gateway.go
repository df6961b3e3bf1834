package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Outcome is the gateway's answer for one fetch. Failed is the degradation
// signal; Errors carries every swallowed provider error in order so the
// router can attach them to the response trail.
type Outcome struct {
	Results  []Result
	Failed   bool
	Provider string // provider that produced Results, or "" on failure
	Errors   []string
}

// GatewayConfig controls timeouts, rate limits, and caching.
type GatewayConfig struct {
	// ProviderTimeout bounds each provider attempt.
	ProviderTimeout time.Duration
	// RequestsPerSecond and Burst feed a per-provider rate limiter.
	RequestsPerSecond float64
	Burst             int
	// CacheSize is the LRU entry count; CacheTTL bounds entry age.
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultGatewayConfig returns production defaults: single-digit-second
// provider budget, gentle outbound rate, small cache.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		ProviderTimeout:   6 * time.Second,
		RequestsPerSecond: 2,
		Burst:             4,
		CacheSize:         256,
		CacheTTL:          5 * time.Minute,
	}
}

type cacheEntry struct {
	results  []Result
	provider string
	storedAt time.Time
}

// Gateway tries providers in order until one returns results. It never
// returns an error: every failure mode degrades to Outcome.Failed.
type Gateway struct {
	providers []Provider
	limiters  map[string]*rate.Limiter
	cache     *lru.Cache[string, cacheEntry]
	cfg       GatewayConfig
	log       *slog.Logger
}

// NewGateway builds a gateway over an ordered provider chain.
func NewGateway(providers []Provider, cfg GatewayConfig, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = DefaultGatewayConfig().ProviderTimeout
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultGatewayConfig().CacheSize
	}

	limiters := make(map[string]*rate.Limiter, len(providers))
	for _, p := range providers {
		rps := cfg.RequestsPerSecond
		if rps <= 0 {
			rps = DefaultGatewayConfig().RequestsPerSecond
		}
		burst := cfg.Burst
		if burst <= 0 {
			burst = DefaultGatewayConfig().Burst
		}
		limiters[p.Name()] = rate.NewLimiter(rate.Limit(rps), burst)
	}

	cache, _ := lru.New[string, cacheEntry](cfg.CacheSize)

	return &Gateway{
		providers: providers,
		limiters:  limiters,
		cache:     cache,
		cfg:       cfg,
		log:       log,
	}
}

// Fetch runs the provider chain for a query. Transport errors, timeouts,
// rate-limit exhaustion, and empty result sets are all absorbed; the caller
// only ever sees results or a failure flag.
func (g *Gateway) Fetch(ctx context.Context, query string, max int) Outcome {
	if max <= 0 {
		max = 5
	}

	key := cacheKey(query, max)
	if entry, ok := g.cache.Get(key); ok {
		if g.cfg.CacheTTL <= 0 || time.Since(entry.storedAt) < g.cfg.CacheTTL {
			return Outcome{Results: entry.results, Provider: entry.provider}
		}
		g.cache.Remove(key)
	}

	outcome := Outcome{Failed: true}
	for _, p := range g.providers {
		results, err := g.tryProvider(ctx, p, query, max)
		if err != nil {
			outcome.Errors = append(outcome.Errors,
				fmt.Sprintf("search provider %s: %v", p.Name(), err))
			g.log.Warn("search provider failed", "provider", p.Name(), "error", err)
			continue
		}
		if len(results) == 0 {
			outcome.Errors = append(outcome.Errors,
				fmt.Sprintf("search provider %s: no results", p.Name()))
			continue
		}

		outcome.Results = results
		outcome.Provider = p.Name()
		outcome.Failed = false
		g.cache.Add(key, cacheEntry{results: results, provider: p.Name(), storedAt: time.Now()})
		break
	}

	return outcome
}

func (g *Gateway) tryProvider(ctx context.Context, p Provider, query string, max int) ([]Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.ProviderTimeout)
	defer cancel()

	if limiter := g.limiters[p.Name()]; limiter != nil {
		if err := limiter.Wait(attemptCtx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	return p.Search(attemptCtx, query, max)
}

func cacheKey(query string, max int) string {
	return fmt.Sprintf("%d:%s", max, strings.ToLower(strings.TrimSpace(query)))
}
