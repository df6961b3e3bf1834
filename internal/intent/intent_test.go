package intent

import (
	"testing"
)

func TestClassify_Table(t *testing.T) {
	c := NewClassifier(BuiltinRules())

	tests := []struct {
		query string
		want  Intent
	}{
		// Identity
		{"Who are you?", Identity},
		{"who created you", Identity},
		{"What is your name?", Identity},

		// Coding
		{"Write a function to reverse a string", Coding},
		{"explain recursion to me", Coding},
		{"why does my python script crash", Coding},
		{"fix this bug please", Coding},
		{"how do I code a web scraper", Coding},

		// Conversational
		{"hello", Conversational},
		{"hey there", Conversational},
		{"how are you doing today", Conversational},
		{"good morning!", Conversational},
		{"thanks a lot", Conversational},

		// Factual default
		{"What is quantum computing?", Factual},
		{"what is the capital of france", Factual},
		{"explain the theory of relativity in simple terms", Factual},
	}

	for _, tt := range tests {
		got := c.Classify(tt.query)
		if got.Intent != tt.want {
			t.Errorf("Classify(%q) = %s (rule %s), want %s",
				tt.query, got.Intent, got.RuleID, tt.want)
		}
	}
}

func TestClassify_RecencyMarkers(t *testing.T) {
	c := NewClassifier(BuiltinRules())

	recency := []string{
		"latest ai news",
		"what is the current gold price",
		"who won the election in 2026",
		"weather today in berlin",
	}
	for _, query := range recency {
		got := c.Classify(query)
		if got.Intent != Factual {
			t.Errorf("Classify(%q) = %s, want FACTUAL", query, got.Intent)
			continue
		}
		if !got.NeedsSearch {
			t.Errorf("Classify(%q): expected NeedsSearch", query)
		}
	}

	got := c.Classify("what is the speed of light")
	if got.NeedsSearch {
		t.Errorf("timeless factual query should not force search")
	}
}

func TestClassify_ShortSmallTalk(t *testing.T) {
	c := NewClassifier(BuiltinRules())

	if got := c.Classify("nice weather huh"); got.Intent != Conversational {
		t.Errorf("short non-informational query = %s, want CONVERSATIONAL", got.Intent)
	}
	// A question mark is an informational cue even in a short query.
	if got := c.Classify("weather tokyo?"); got.Intent != Factual {
		t.Errorf("short question = %s, want FACTUAL", got.Intent)
	}
}

func TestClassify_TotalAndDeterministic(t *testing.T) {
	c := NewClassifier(BuiltinRules())

	a := c.Classify("")
	b := c.Classify("")
	if a != b {
		t.Errorf("classification not deterministic: %+v vs %+v", a, b)
	}
	if a.Intent != Factual {
		t.Errorf("empty query defaults to %s, want FACTUAL", a.Intent)
	}
}

func TestClassify_IdentityBeatsCoding(t *testing.T) {
	// Mentions python, but asks about the assistant. The identity rule is
	// registered first and must win.
	c := NewClassifier(BuiltinRules())
	got := c.Classify("who are you, some python bot?")
	if got.Intent != Identity {
		t.Errorf("got %s (rule %s), want IDENTITY", got.Intent, got.RuleID)
	}
}
