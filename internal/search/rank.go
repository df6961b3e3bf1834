package search

import "strings"

// Relevance scores a result against the query by keyword overlap: the share
// of query terms (stopwords excluded) that appear in the title or snippet.
// Returns 0..1. This is an optional post-hoc filter, not part of the
// gateway contract.
func Relevance(query string, r Result) float64 {
	terms := contentTerms(query)
	if len(terms) == 0 {
		return 0
	}

	haystack := strings.ToLower(r.Title + " " + r.Snippet)
	matched := 0
	for term := range terms {
		if strings.Contains(haystack, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// FilterRelevant keeps results scoring at or above minScore, preserving
// provider order. A filter that would discard everything returns the input
// unchanged — an aggressive threshold must not convert a successful search
// into an artificial failure.
func FilterRelevant(query string, results []Result, minScore float64) []Result {
	if minScore <= 0 || len(results) == 0 {
		return results
	}

	kept := make([]Result, 0, len(results))
	for _, r := range results {
		if Relevance(query, r) >= minScore {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return results
	}
	return kept
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "of": true, "in": true, "on": true,
	"to": true, "for": true, "and": true, "or": true, "what": true,
	"who": true, "when": true, "where": true, "why": true, "how": true,
	"does": true, "do": true, "did": true, "me": true, "my": true,
	"it": true, "its": true, "about": true, "with": true,
}

func contentTerms(query string) map[string]bool {
	terms := make(map[string]bool)
	for _, field := range strings.Fields(strings.ToLower(query)) {
		term := strings.Trim(field, "?!.,:;\"'()")
		if len(term) < 3 || stopwords[term] {
			continue
		}
		terms[term] = true
	}
	return terms
}
