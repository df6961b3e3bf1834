// Package unicode detects Unicode smuggling in user queries. Invisible
// characters and direction overrides are the cheapest way to hide an
// injection payload from substring matching, so every query is scanned and
// folded before any signature table sees it.
package unicode

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Threat is one smuggling indicator found in a query.
type Threat struct {
	Category    string // "zero-width", "bidi-override", "tag-char", "control-char", "homoglyph", "invalid-utf8"
	Description string
	Position    int    // byte offset in the input
	Codepoint   string // e.g. "U+200B"
}

// ScanResult is the output of a query scan.
type ScanResult struct {
	// Clean is true when no smuggling indicator was found.
	Clean bool

	Threats []Threat

	// Folded is the query with invisible characters removed and homoglyphs
	// mapped to their Latin look-alikes. Signature matching runs against
	// both the original and the folded form.
	Folded string

	// Smuggling is true when the query contains characters that hide or
	// reorder content (zero-width, bidi, tag, control). Homoglyphs alone
	// do not set it; they are folded and matched instead.
	Smuggling bool
}

// Scan inspects a query for Unicode smuggling indicators and builds the
// folded form used for signature matching.
func Scan(input string) ScanResult {
	result := ScanResult{Clean: true}
	var folded strings.Builder

	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])

		if r == utf8.RuneError && size == 1 {
			result.Clean = false
			result.Smuggling = true
			result.Threats = append(result.Threats, Threat{
				Category:    "invalid-utf8",
				Description: "invalid UTF-8 byte sequence",
				Position:    i,
				Codepoint:   fmt.Sprintf("0x%02X", input[i]),
			})
			i++
			continue
		}

		if t, hidden := classifyHidden(r, i); hidden {
			result.Clean = false
			result.Smuggling = true
			result.Threats = append(result.Threats, t)
			// hidden characters are dropped from the folded form
			i += size
			continue
		}

		if latin, ok := homoglyphFor(r); ok {
			result.Clean = false
			result.Threats = append(result.Threats, Threat{
				Category:    "homoglyph",
				Description: fmt.Sprintf("U+%04X is visually confusable with Latin '%c'", r, latin),
				Position:    i,
				Codepoint:   fmt.Sprintf("U+%04X", r),
			})
			folded.WriteRune(latin)
			i += size
			continue
		}

		folded.WriteRune(r)
		i += size
	}

	result.Folded = folded.String()
	return result
}

// classifyHidden reports whether r is a character that hides, reorders, or
// smuggles content.
func classifyHidden(r rune, pos int) (Threat, bool) {
	cp := fmt.Sprintf("U+%04X", r)

	switch {
	case isZeroWidth(r):
		return Threat{
			Category:    "zero-width",
			Description: fmt.Sprintf("zero-width character %s can hide content from matching", cp),
			Position:    pos,
			Codepoint:   cp,
		}, true
	case isBidiOverride(r):
		return Threat{
			Category:    "bidi-override",
			Description: fmt.Sprintf("bidirectional override %s can make displayed text differ from processed text", cp),
			Position:    pos,
			Codepoint:   cp,
		}, true
	case isTagCharacter(r):
		return Threat{
			Category:    "tag-char",
			Description: fmt.Sprintf("Unicode tag character %s can smuggle hidden instructions", cp),
			Position:    pos,
			Codepoint:   cp,
		}, true
	case isUnsafeControl(r):
		return Threat{
			Category:    "control-char",
			Description: fmt.Sprintf("control character %s should not appear in a query", cp),
			Position:    pos,
			Codepoint:   cp,
		}, true
	}
	return Threat{}, false
}

func isZeroWidth(r rune) bool {
	switch r {
	case '​', // ZERO WIDTH SPACE
		'‌', // ZERO WIDTH NON-JOINER
		'‍', // ZERO WIDTH JOINER
		'﻿', // ZERO WIDTH NO-BREAK SPACE (BOM)
		'⁠', // WORD JOINER
		'᠎', // MONGOLIAN VOWEL SEPARATOR
		'‎', // LEFT-TO-RIGHT MARK
		'‏': // RIGHT-TO-LEFT MARK
		return true
	}
	return false
}

func isBidiOverride(r rune) bool {
	switch r {
	case '‪', '‫', '‬', '‭', '‮',
		'⁦', '⁧', '⁨', '⁩':
		return true
	}
	return false
}

func isTagCharacter(r rune) bool {
	return r >= 0xE0001 && r <= 0xE007F
}

func isUnsafeControl(r rune) bool {
	// Tab, newline and carriage return are legitimate in pasted queries.
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	if r <= 0x1F || r == 0x7F {
		return true
	}
	// C1 control characters
	if r >= 0x80 && r <= 0x9F {
		return true
	}
	return false
}

// homoglyphFor maps non-Latin characters that visually resemble Latin
// letters to their Latin counterpart, so "ignоre" with a Cyrillic о still
// hits the "ignore" signature after folding.
func homoglyphFor(r rune) (rune, bool) {
	if unicode.Is(unicode.Cyrillic, r) {
		if latin, ok := cyrillicHomoglyphs[r]; ok {
			return latin, true
		}
	}
	if unicode.Is(unicode.Greek, r) {
		if latin, ok := greekHomoglyphs[r]; ok {
			return latin, true
		}
	}
	return 0, false
}

var cyrillicHomoglyphs = map[rune]rune{
	'а': 'a', 'А': 'A',
	'В': 'B',
	'с': 'c', 'С': 'C',
	'е': 'e', 'Е': 'E',
	'Н': 'H',
	'і': 'i', 'І': 'I',
	'К': 'K',
	'М': 'M',
	'о': 'o', 'О': 'O',
	'р': 'p', 'Р': 'P',
	'Т': 'T',
	'х': 'x', 'Х': 'X',
	'у': 'y', 'У': 'Y',
}

var greekHomoglyphs = map[rune]rune{
	'Α': 'A', 'Β': 'B', 'Ε': 'E', 'Η': 'H', 'Ι': 'I',
	'Κ': 'K', 'Μ': 'M', 'Ν': 'N', 'Ο': 'O', 'ο': 'o',
	'Ρ': 'P', 'Τ': 'T', 'Χ': 'X', 'Υ': 'Y', 'Ζ': 'Z',
}
