// Package shield screens raw queries for prompt-injection and
// secret-exfiltration attempts before any backend is consulted.
//
// Detection is a curated denylist, not a learned classifier: an ordered
// table of (pattern, category) signatures, first match wins. The table is
// data — built-in defaults plus YAML signature packs — so the signature set
// stays auditable and extensible without code changes. False negatives for
// novel phrasings are an accepted limitation of the approach.
//
// The shield only assesses; blocking is enacted by the router.
package shield

// Category labels the kind of threat a signature detects.
type Category string

const (
	CategoryNone                Category = "NONE"
	CategorySecretExposure      Category = "SECRET_EXPOSURE"
	CategoryInstructionOverride Category = "INSTRUCTION_OVERRIDE"
	CategoryRoleHijack          Category = "ROLE_HIJACK"
	CategoryOther               Category = "OTHER"
)

// Assessment is the outcome of screening one query. Created fresh per query,
// immutable, consumed only by the router.
type Assessment struct {
	// Threat is true when any signature matched.
	Threat bool

	// Category of the first matching signature; NONE when clean.
	Category Category

	// SignatureID identifies the matching signature for the audit trail.
	SignatureID string

	// MatchedPattern is the pattern text that fired, if any.
	MatchedPattern string

	// Reason is a human-readable explanation of the match.
	Reason string
}

// Signature is one entry in the ordered detection table. A signature matches
// when any of its Contains substrings (case-insensitive) or its Regex matches
// the query or its homoglyph-folded form.
type Signature struct {
	ID       string   `yaml:"id"`
	Category Category `yaml:"category"`
	Contains []string `yaml:"contains,omitempty"`
	Regex    string   `yaml:"regex,omitempty"`
	Reason   string   `yaml:"reason,omitempty"`
}
