// Package intent assigns a query one of four coarse categories that drive
// routing: identity and conversational queries are answered from fixed
// knowledge, coding queries go straight to the model, and factual queries
// may engage web search. Like the shield, classification is an ordered
// first-match rule table, most specific rules first, with FACTUAL as the
// conservative default — "might need search" is the safer assumption than
// "safe to answer from memory".
package intent

import (
	"regexp"
	"strings"
)

// Intent is the coarse category assigned to a query.
type Intent string

const (
	Identity       Intent = "IDENTITY"
	Conversational Intent = "CONVERSATIONAL"
	Coding         Intent = "CODING"
	Factual        Intent = "FACTUAL"
)

// Classification is the classifier's output for one query.
type Classification struct {
	Intent Intent

	// NeedsSearch is set for FACTUAL queries carrying an explicit recency
	// marker ("today", "latest", a near-future year). The router searches
	// for these even when the always-search-on-factual policy is off.
	NeedsSearch bool

	// RuleID names the rule that decided the intent; "default" for the
	// FACTUAL fallthrough.
	RuleID string

	Confidence float64
}

// Rule is one entry in the classification table. A rule matches when any
// Contains substring, any Words whole-token, or the Regex matches.
type Rule struct {
	ID         string   `yaml:"id"`
	Intent     Intent   `yaml:"intent"`
	Contains   []string `yaml:"contains,omitempty"`
	Words      []string `yaml:"words,omitempty"`
	Regex      string   `yaml:"regex,omitempty"`
	Confidence float64  `yaml:"confidence,omitempty"`
}

type compiledRule struct {
	rule  Rule
	words map[string]bool
	re    *regexp.Regexp
}

// Classifier categorizes queries. Pure, deterministic, and total: every
// query gets an intent, FACTUAL when nothing more specific matches.
type Classifier struct {
	rules []compiledRule
}

// NewClassifier builds a classifier from an ordered rule table. Rules with
// an invalid regex are dropped.
func NewClassifier(rules []Rule) *Classifier {
	c := &Classifier{}
	for _, r := range rules {
		cr := compiledRule{rule: r}
		if len(r.Words) > 0 {
			cr.words = make(map[string]bool, len(r.Words))
			for _, w := range r.Words {
				cr.words[strings.ToLower(w)] = true
			}
		}
		if r.Regex != "" {
			re, err := regexp.Compile(r.Regex)
			if err != nil {
				continue
			}
			cr.re = re
		}
		c.rules = append(c.rules, cr)
	}
	return c
}

// Classify assigns an intent to the query. First matching rule wins.
func (c *Classifier) Classify(query string) Classification {
	lowered := strings.ToLower(strings.TrimSpace(query))
	tokens := tokenize(lowered)

	for _, cr := range c.rules {
		if cr.matches(lowered, tokens) {
			conf := cr.rule.Confidence
			if conf == 0 {
				conf = 0.80
			}
			return Classification{
				Intent:     cr.rule.Intent,
				RuleID:     cr.rule.ID,
				Confidence: conf,
			}
		}
	}

	// Short small talk without any informational cue reads as
	// conversational, not as a fact to research.
	if len(tokens) > 0 && len(tokens) <= 3 && !hasInformationalCue(lowered, tokens) {
		return Classification{
			Intent:     Conversational,
			RuleID:     "short-smalltalk",
			Confidence: 0.60,
		}
	}

	return Classification{
		Intent:      Factual,
		NeedsSearch: hasRecencyMarker(lowered, tokens),
		RuleID:      "default",
		Confidence:  0.50,
	}
}

func (cr compiledRule) matches(lowered string, tokens []string) bool {
	for _, sub := range cr.rule.Contains {
		if strings.Contains(lowered, strings.ToLower(sub)) {
			return true
		}
	}
	if cr.words != nil {
		for _, tok := range tokens {
			if cr.words[tok] {
				return true
			}
		}
	}
	return cr.re != nil && cr.re.MatchString(lowered)
}

func tokenize(lowered string) []string {
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '\'')
	})
}

var interrogatives = map[string]bool{
	"what": true, "who": true, "when": true, "where": true,
	"why": true, "how": true, "which": true, "is": true, "are": true,
	"does": true, "did": true, "can": true,
}

func hasInformationalCue(lowered string, tokens []string) bool {
	if strings.Contains(lowered, "?") {
		return true
	}
	for _, tok := range tokens {
		if interrogatives[tok] {
			return true
		}
	}
	// "latest ai news" is three tokens but clearly not small talk.
	return hasRecencyMarker(lowered, tokens)
}

// nearYearPattern matches year tokens around the present, the usual marker
// of a question about something newer than model training data.
var nearYearPattern = regexp.MustCompile(`\b20(2[4-9]|3[0-9])\b`)

var recencyWords = map[string]bool{
	"today": true, "tonight": true, "yesterday": true,
	"latest": true, "current": true, "currently": true,
	"now": true, "news": true, "recent": true, "recently": true,
}

func hasRecencyMarker(lowered string, tokens []string) bool {
	for _, tok := range tokens {
		if recencyWords[tok] {
			return true
		}
	}
	return nearYearPattern.MatchString(lowered)
}
