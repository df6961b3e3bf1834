package shield

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"jarvisd/internal/unicode"
)

// compiledSignature pairs a table entry with its pre-compiled regex and
// pre-folded substrings so Assess does no compilation work per query.
type compiledSignature struct {
	sig      Signature
	contains []string // lowercased
	re       *regexp.Regexp
}

// Shield evaluates queries against the signature table. Stateless after
// construction and safe for concurrent use.
type Shield struct {
	signatures []compiledSignature
	log        *slog.Logger
}

// New builds a shield from an ordered signature table. Signatures with an
// invalid regex are dropped with a warning rather than failing construction;
// a misauthored pack must not take the whole router down.
func New(signatures []Signature, log *slog.Logger) *Shield {
	if log == nil {
		log = slog.Default()
	}

	s := &Shield{log: log}
	for _, sig := range signatures {
		cs := compiledSignature{sig: sig}
		for _, sub := range sig.Contains {
			cs.contains = append(cs.contains, strings.ToLower(sub))
		}
		if sig.Regex != "" {
			re, err := regexp.Compile(sig.Regex)
			if err != nil {
				log.Warn("dropping signature with invalid regex",
					"signature", sig.ID, "error", err)
				continue
			}
			cs.re = re
		}
		s.signatures = append(s.signatures, cs)
	}
	return s
}

// Assess screens a query and returns a threat assessment. It never panics
// and never blocks on I/O: any internal fault is logged and degrades to a
// clean assessment, because the security check must not be the reason the
// router crashes.
func (s *Shield) Assess(query string) (assessment Assessment) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("shield assessment panicked, degrading to clean",
				"panic", fmt.Sprint(r))
			assessment = Assessment{Category: CategoryNone}
		}
	}()

	scan := unicode.Scan(query)
	if scan.Smuggling {
		return Assessment{
			Threat:      true,
			Category:    CategoryOther,
			SignatureID: "unicode-smuggling",
			Reason:      fmt.Sprintf("Query contains hidden Unicode content (%s).", scan.Threats[0].Category),
		}
	}

	// Match both the raw query and the homoglyph-folded form; a Cyrillic
	// look-alike must not slip past a Latin signature.
	lowered := strings.ToLower(query)
	folded := strings.ToLower(scan.Folded)

	for _, cs := range s.signatures {
		if pattern, ok := cs.match(lowered, folded); ok {
			return Assessment{
				Threat:         true,
				Category:       cs.sig.Category,
				SignatureID:    cs.sig.ID,
				MatchedPattern: pattern,
				Reason:         cs.sig.Reason,
			}
		}
	}

	return Assessment{Category: CategoryNone}
}

func (cs compiledSignature) match(lowered, folded string) (string, bool) {
	for _, sub := range cs.contains {
		if strings.Contains(lowered, sub) || strings.Contains(folded, sub) {
			return sub, true
		}
	}
	if cs.re != nil {
		if m := cs.re.FindString(lowered); m != "" {
			return m, true
		}
		if m := cs.re.FindString(folded); m != "" {
			return m, true
		}
	}
	return "", false
}
