// Package textnorm provides the text normalization primitives shared by
// label resolution, answer matching, the ledger, and the posting extractor.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

// noiseTokens are fragments that leak into label text from framework
// attributes, automation hooks, and select-widget boilerplate. They carry no
// semantic signal and are stripped before scoring.
var noiseTokens = []string{
	"select an option",
	"please select",
	"select one",
	"choose an option",
	"choose one",
	"no answer",
	"required field",
	"this field is required",
	"data-testid",
	"data-automation-id",
	"aria-describedby",
	"undefined",
	"null",
}

var (
	asteriskRe   = regexp.MustCompile(`\s*\*+\s*`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	camelRe      = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	separatorRe  = regexp.MustCompile(`[_\-./\[\]]+`)
)

// Normalize lowercases a raw label candidate, strips noise tokens and
// punctuation, collapses immediately repeated words, and collapses
// whitespace. The result is the canonical form used for scoring, matching,
// and ledger keys.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	s = asteriskRe.ReplaceAllString(s, " ")
	for _, tok := range noiseTokens {
		s = strings.ReplaceAll(s, tok, " ")
	}
	s = punctRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	// Collapse immediately repeated words ("first name first name" appears
	// when both a label element and its aria mirror are concatenated).
	words := strings.Fields(s)
	collapsed := make([]string, 0, len(words))
	for _, w := range words {
		if len(collapsed) > 0 && collapsed[len(collapsed)-1] == w {
			continue
		}
		collapsed = append(collapsed, w)
	}
	return strings.Join(collapsed, " ")
}

// SplitIdentifier de-camels and de-snakes a name/id attribute value into a
// space-separated phrase ("first_name" -> "first name", "phoneNumber" ->
// "phone number").
func SplitIdentifier(s string) string {
	s = camelRe.ReplaceAllString(s, "$1 $2")
	s = separatorRe.ReplaceAllString(s, " ")
	return Normalize(s)
}

// AlphaRatio returns the fraction of non-space characters that are letters.
// Candidates below 0.5 are machine identifiers or layout junk, not labels.
func AlphaRatio(s string) float64 {
	letters, total := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

// Tokens returns the normalized word set of s.
func Tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(s)) {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard computes token-set Jaccard similarity between two strings.
// Returns 0 when either side has no tokens.
func Jaccard(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for w := range ta {
		if _, ok := tb[w]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// CollapseWhitespace replaces runs of whitespace with a single space and
// trims the result. Unlike Normalize it preserves case and punctuation.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
