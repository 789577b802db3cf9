// ABOUTME: Canonical text normalization for signal intake
// ABOUTME: The normalized form keys caching, lexicon matching, and memory search
package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText produces the canonical form of a signal: lowercase,
// Unicode canonical decomposition with combining marks stripped, and
// whitespace collapsed to single spaces. Idempotent.
func NormalizeText(s string) string {
	lowered := strings.ToLower(s)
	decomposed := norm.NFD.String(lowered)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// MerchantTokens reduces a merchant name to lowercase alphanumeric tokens
// for recurring-entity matching against the memory store.
func MerchantTokens(merchant string) []string {
	normalized := NormalizeText(merchant)

	var tokens []string
	var current strings.Builder
	for _, r := range normalized {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}
