// Package search wraps external web-search backends behind a degradation
// contract: the gateway never returns an error, it reports failure. An
// ordered chain of providers is tried in sequence, each under its own
// timeout and rate limit, and a small LRU keeps recent answers so a retried
// query does not hit the network twice.
package search

import "context"

// Result is one normalized search hit. Order within a slice is the
// provider's relevance rank.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider is a single search backend. Implementations may fail, time out,
// or return nothing; the gateway absorbs all of it.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, max int) ([]Result, error)
}
