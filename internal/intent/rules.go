package intent

// BuiltinRules returns the default classification table. Order is the
// routing policy: identity and coding queries are answerable from fixed
// internal knowledge and must never reach the search gateway, so their
// rules sit above the conversational and factual tiers.
func BuiltinRules() []Rule {
	return []Rule{
		// --- Identity: questions about the assistant itself ---
		{
			ID:     "identity-self",
			Intent: Identity,
			Contains: []string{
				"who are you", "what are you", "who made you",
				"who created you", "who built you", "introduce yourself",
				"what is your name", "what's your name", "tell me about yourself",
			},
			Confidence: 0.95,
		},

		// --- Coding: programming help ---
		{
			ID:     "coding-request",
			Intent: Coding,
			Regex:  `(write|create|implement|debug|fix|refactor|optimi[sz]e|explain)\s+(a\s+|an\s+|the\s+|this\s+|my\s+)?(function|method|class|script|program|algorithm|regex|query|code)`,
			Contains: []string{
				"how do i code", "how to code", "code review",
				"compile error", "stack trace", "segmentation fault",
				"unit test", "for loop", "null pointer",
			},
			Confidence: 0.90,
		},
		{
			ID:     "coding-language",
			Intent: Coding,
			Words: []string{
				"python", "javascript", "typescript", "golang", "rust",
				"java", "sql", "bash", "regex", "recursion", "algorithm",
				"debugging", "refactor", "api", "json", "bug",
			},
			Confidence: 0.75,
		},

		// --- Conversational: greetings and small talk ---
		{
			ID:     "conversational-greeting",
			Intent: Conversational,
			Words:  []string{"hello", "hi", "hey", "thanks", "thank", "bye", "goodbye", "yo"},
			Contains: []string{
				"how are you", "how's it going", "good morning",
				"good afternoon", "good evening", "good night",
				"nice to meet you", "what's up",
			},
			Confidence: 0.85,
		},

		// Everything else falls through to FACTUAL inside Classify.
	}
}
