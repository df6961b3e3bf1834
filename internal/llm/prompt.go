package llm

import (
	"fmt"
	"strings"

	"jarvisd/internal/search"
)

// DefaultSystemPrompt is the assistant persona used when the
// configuration does not supply one.
const DefaultSystemPrompt = "You are Jarvis, a concise and helpful voice assistant. " +
	"Answer directly in plain prose. Keep answers short enough to read aloud. " +
	"If you do not know something, say so rather than guessing."

const searchContextInstruction = "Use the numbered web results below to answer the question. " +
	"Cite a result inline with its bracketed number, like [1] or [2], wherever you rely on it. " +
	"If the results do not cover the question, answer from your own knowledge and do not cite."

// BuildUserPrompt renders the final user message. When search results
// are present they are numbered [1]..[n] in the order the gateway
// returned them, so bracketed citations in the answer map back to the
// resource list positionally.
func BuildUserPrompt(query string, results []search.Result) string {
	if len(results) == 0 {
		return query
	}

	var b strings.Builder
	b.WriteString(searchContextInstruction)
	b.WriteString("\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, r.Title)
		if r.URL != "" {
			fmt.Fprintf(&b, "    %s\n", r.URL)
		}
		if r.Snippet != "" {
			fmt.Fprintf(&b, "    %s\n", r.Snippet)
		}
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}
