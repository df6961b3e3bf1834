// Package router drives a query through security screening, intent
// classification, optional web search, and generation. Its central
// contract is zero failure: Process always returns a complete response,
// degrading quality instead of availability when a backend misbehaves.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"jarvisd/internal/intent"
	"jarvisd/internal/llm"
	"jarvisd/internal/logger"
	"jarvisd/internal/search"
	"jarvisd/internal/shield"
	"jarvisd/internal/stats"
)

// Source says which path produced the answer.
type Source string

const (
	SourceIdentity        Source = "IDENTITY"
	SourceInternalLLM     Source = "INTERNAL_LLM"
	SourceWebSearch       Source = "WEB_SEARCH"
	SourceSecurityBlocked Source = "SECURITY_BLOCKED"
	SourceFallback        Source = "FALLBACK"
)

// Confidence levels per answer path.
const (
	confidenceScripted = 1.0
	confidenceSearch   = 0.85
	confidenceInternal = 0.7
	confidenceFallback = 0.2
)

const blockedAnswer = "I can't help with that request."

const emptyQueryAnswer = "I didn't catch anything there. What would you like to ask?"

// Response is the complete outcome of one processed query. Every call
// to Process returns one of these; no code path raises to the caller.
type Response struct {
	ID           string          `json:"id"`
	Answer       string          `json:"answer"`
	Source       Source          `json:"source"`
	UsedSearch   bool            `json:"used_search"`
	SearchFailed bool            `json:"search_failed"`
	Confidence   float64         `json:"confidence"`
	Resources    []search.Result `json:"resources,omitempty"`
	Reasoning    []string        `json:"reasoning,omitempty"`
	ErrorsCaught []string        `json:"errors_caught,omitempty"`
	Elapsed      time.Duration   `json:"elapsed_ns"`
}

// SearchGateway is the slice of the search package the router uses.
type SearchGateway interface {
	Fetch(ctx context.Context, query string, max int) search.Outcome
}

// GenerationGateway is the slice of the llm package the router uses.
type GenerationGateway interface {
	Generate(ctx context.Context, req *llm.Request) llm.GenerateResult
	Available() bool
}

// HistoryStore enriches the generation prompt with prior turns.
type HistoryStore interface {
	Append(ctx context.Context, sessionID, role, content string) error
	Recent(ctx context.Context, sessionID string, limit int) ([]Turn, error)
}

// Turn mirrors history.Turn without importing the storage package.
type Turn struct {
	Role    string
	Content string
}

// AuditLogger receives one event per processed query.
type AuditLogger interface {
	Log(event logger.QueryEvent) error
}

// Options tunes routing policy.
type Options struct {
	// FactualAlwaysSearches attempts a search for every factual query.
	// When false only recency-marked queries search.
	FactualAlwaysSearches bool
	// SearchEnabled gates the search stage entirely.
	SearchEnabled bool
	// MaxResults caps fetched search results.
	MaxResults int
	// MinRelevance drops off-topic results before attachment; 0 keeps all.
	MinRelevance float64
	// SystemPrompt overrides the default assistant persona.
	SystemPrompt string
	// AssistantName is used by the identity script.
	AssistantName string
	// SessionID scopes history reads and writes.
	SessionID string
	// ContextTurns is how many stored turns enrich the prompt.
	ContextTurns int
}

// DefaultOptions returns the standard routing policy.
func DefaultOptions() Options {
	return Options{
		FactualAlwaysSearches: true,
		SearchEnabled:         true,
		MaxResults:            5,
		MinRelevance:          0.1,
		AssistantName:         "Jarvis",
		ContextTurns:          10,
	}
}

// Router is the resilient query pipeline. Safe for concurrent Process
// calls: the only shared mutable state is the stats tracker and the
// history store, both safe on their own.
type Router struct {
	shield     *shield.Shield
	classifier *intent.Classifier
	searcher   SearchGateway
	generator  GenerationGateway
	tracker    *stats.Tracker
	history    HistoryStore
	audit      AuditLogger
	opts       Options
	log        *slog.Logger
}

// New assembles a router. searcher, history, and audit may be nil;
// the corresponding stages are skipped.
func New(sh *shield.Shield, cl *intent.Classifier, searcher SearchGateway,
	generator GenerationGateway, tracker *stats.Tracker, opts Options, log *slog.Logger) *Router {
	if tracker == nil {
		tracker = stats.NewTracker()
	}
	if log == nil {
		log = slog.Default()
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultOptions().MaxResults
	}
	if opts.AssistantName == "" {
		opts.AssistantName = DefaultOptions().AssistantName
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	return &Router{
		shield:     sh,
		classifier: cl,
		searcher:   searcher,
		generator:  generator,
		tracker:    tracker,
		opts:       opts,
		log:        log,
	}
}

// WithHistory attaches a conversation store.
func (r *Router) WithHistory(store HistoryStore) *Router {
	r.history = store
	return r
}

// WithAudit attaches an audit logger.
func (r *Router) WithAudit(audit AuditLogger) *Router {
	r.audit = audit
	return r
}

// Statistics returns a point-in-time copy of the counters.
func (r *Router) Statistics() stats.Snapshot { return r.tracker.Snapshot() }

// ResetStatistics zeroes the counters.
func (r *Router) ResetStatistics() { r.tracker.Reset() }

// Process routes one query end to end. It never panics outward and
// never returns nil: any internal defect is converted into a FALLBACK
// response by the deferred recover.
func (r *Router) Process(ctx context.Context, query string) (resp *Response) {
	start := time.Now()
	id := uuid.NewString()
	var intentName, category, signatureID string

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("panic recovered in Process", "panic", rec)
			resp = &Response{
				ID:           id,
				Answer:       llm.FallbackText,
				Source:       SourceFallback,
				Confidence:   confidenceFallback,
				ErrorsCaught: []string{fmt.Sprintf("internal fault: %v", rec)},
			}
			r.tracker.RecordFallback()
		}
		resp.Elapsed = time.Since(start)
		r.tracker.RecordQuery()
		r.auditEvent(query, intentName, category, signatureID, resp)
	}()

	if strings.TrimSpace(query) == "" {
		return &Response{
			ID:         id,
			Answer:     emptyQueryAnswer,
			Source:     SourceInternalLLM,
			Confidence: confidenceScripted,
			Reasoning:  []string{"empty query; answered with a fixed prompt"},
		}
	}

	// Security screening is terminal on a match.
	assessment := r.shield.Assess(query)
	if assessment.Threat {
		r.tracker.RecordSecurityBlock()
		category = string(assessment.Category)
		signatureID = assessment.SignatureID
		return &Response{
			ID:         id,
			Answer:     blockedAnswer,
			Source:     SourceSecurityBlocked,
			Confidence: confidenceScripted,
			Reasoning: []string{fmt.Sprintf("blocked by signature %s (%s)",
				assessment.SignatureID, assessment.Category)},
		}
	}

	classification := r.classifier.Classify(query)
	intentName = string(classification.Intent)
	reasoning := []string{fmt.Sprintf("intent %s via rule %s",
		classification.Intent, classification.RuleID)}

	// Identity is answered from script, no model call.
	if classification.Intent == intent.Identity {
		r.tracker.RecordSearchBypass()
		resp = &Response{
			ID:         id,
			Answer:     r.identityAnswer(query),
			Source:     SourceIdentity,
			Confidence: confidenceScripted,
			Reasoning:  append(reasoning, "answered from identity script"),
		}
		r.remember(ctx, query, resp.Answer)
		return resp
	}

	var (
		errorsCaught []string
		results      []search.Result
		usedSearch   bool
		searchFailed bool
	)

	if r.shouldSearch(classification) {
		results, searchFailed, errorsCaught = r.attemptSearch(ctx, query)
		usedSearch = len(results) > 0
		if searchFailed {
			r.tracker.RecordSearchFailed()
			reasoning = append(reasoning, "search failed; continuing without context")
		} else {
			r.tracker.RecordSearchUsed()
			reasoning = append(reasoning, fmt.Sprintf("search returned %d results", len(results)))
		}
	} else {
		r.tracker.RecordSearchBypass()
		reasoning = append(reasoning, "search bypassed")
	}

	gen := r.generate(ctx, query, results)
	errorsCaught = append(errorsCaught, gen.Errors...)

	source := SourceInternalLLM
	confidence := confidenceInternal
	var resources []search.Result
	switch {
	case gen.Failed:
		source = SourceFallback
		confidence = confidenceFallback
		usedSearch = false
		r.tracker.RecordFallback()
		reasoning = append(reasoning, "generation chain exhausted; fixed fallback answer")
	case usedSearch:
		source = SourceWebSearch
		confidence = confidenceSearch
		resources = results
		reasoning = append(reasoning, fmt.Sprintf("answered by %s with citations", gen.Provider))
	default:
		reasoning = append(reasoning, fmt.Sprintf("answered by %s from internal knowledge", gen.Provider))
	}

	resp = &Response{
		ID:           id,
		Answer:       gen.Text,
		Source:       source,
		UsedSearch:   usedSearch,
		SearchFailed: searchFailed,
		Confidence:   confidence,
		Resources:    resources,
		Reasoning:    reasoning,
		ErrorsCaught: errorsCaught,
	}
	if !gen.Failed {
		r.remember(ctx, query, resp.Answer)
	}
	return resp
}

// shouldSearch applies the routing policy for one classification.
func (r *Router) shouldSearch(c intent.Classification) bool {
	if !r.opts.SearchEnabled || r.searcher == nil {
		return false
	}
	if c.Intent != intent.Factual {
		return false
	}
	return r.opts.FactualAlwaysSearches || c.NeedsSearch
}

// attemptSearch fetches and relevance-filters results. The filter runs
// before resources are attached so the resources-imply-success
// invariant holds against the filtered list.
func (r *Router) attemptSearch(ctx context.Context, query string) ([]search.Result, bool, []string) {
	outcome := r.searcher.Fetch(ctx, query, r.opts.MaxResults)
	if outcome.Failed {
		return nil, true, outcome.Errors
	}
	results := outcome.Results
	if r.opts.MinRelevance > 0 {
		results = search.FilterRelevant(query, results, r.opts.MinRelevance)
	}
	if len(results) == 0 {
		return nil, true, outcome.Errors
	}
	return results, false, outcome.Errors
}

func (r *Router) generate(ctx context.Context, query string, results []search.Result) llm.GenerateResult {
	if r.generator == nil || !r.generator.Available() {
		return llm.GenerateResult{
			Text:   llm.FallbackText,
			Failed: true,
			Errors: []string{"no generation providers configured"},
		}
	}

	systemPrompt := r.opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = llm.DefaultSystemPrompt
	}

	messages := r.recentContext(ctx)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: llm.BuildUserPrompt(query, results),
	})

	return r.generator.Generate(ctx, &llm.Request{
		SystemPrompt: systemPrompt,
		Messages:     messages,
	})
}

// recentContext replays stored turns as conversation messages.
func (r *Router) recentContext(ctx context.Context) []llm.Message {
	if r.history == nil || r.opts.ContextTurns <= 0 {
		return nil
	}
	turns, err := r.history.Recent(ctx, r.opts.SessionID, r.opts.ContextTurns)
	if err != nil {
		r.log.Warn("history read failed", "error", err)
		return nil
	}
	messages := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == "assistant" {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: t.Content})
	}
	return messages
}

// remember persists a completed exchange. Failures are logged, never
// surfaced.
func (r *Router) remember(ctx context.Context, query, answer string) {
	if r.history == nil {
		return
	}
	if err := r.history.Append(ctx, r.opts.SessionID, "user", query); err != nil {
		r.log.Warn("history write failed", "error", err)
		return
	}
	if err := r.history.Append(ctx, r.opts.SessionID, "assistant", answer); err != nil {
		r.log.Warn("history write failed", "error", err)
	}
}

func (r *Router) identityAnswer(query string) string {
	name := r.opts.AssistantName
	lowered := strings.ToLower(query)
	switch {
	case strings.Contains(lowered, "created") || strings.Contains(lowered, "made you"):
		return fmt.Sprintf("I'm %s, a voice assistant built by my developers to answer questions, "+
			"help with code, and look things up on the web.", name)
	case strings.Contains(lowered, "what are you"):
		return fmt.Sprintf("I'm %s, a conversational assistant. I can answer questions, "+
			"help with programming, and search the web for current information.", name)
	default:
		return fmt.Sprintf("I'm %s, your personal assistant. Ask me anything.", name)
	}
}

// auditEvent writes the per-query audit record. intentName may be
// empty when classification never ran.
func (r *Router) auditEvent(query, intentName, category, signatureID string, resp *Response) {
	if r.audit == nil || resp == nil {
		return
	}
	event := logger.QueryEvent{
		ID:           resp.ID,
		Query:        query,
		Intent:       intentName,
		Source:       string(resp.Source),
		Category:     category,
		SignatureID:  signatureID,
		UsedSearch:   resp.UsedSearch,
		SearchFailed: resp.SearchFailed,
		Confidence:   resp.Confidence,
		Errors:       resp.ErrorsCaught,
		ElapsedMS:    resp.Elapsed.Milliseconds(),
	}
	if err := r.audit.Log(event); err != nil {
		r.log.Warn("audit write failed", "error", err)
	}
}
