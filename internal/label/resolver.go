// Package label resolves one clean human-readable label per control from
// the weak candidate strings gathered at discovery time. No single source
// is reliably present across unrelated document authors, so candidates are
// normalized and scored for semantic richness rather than trusted by origin.
package label

import (
	"strings"

	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/textnorm"
)

// Unknown is the literal marker returned when no candidate survives
// normalization and no identity fallback exists.
const Unknown = "unknown field"

// minAlphaRatio rejects candidates that are mostly digits and separators.
const minAlphaRatio = 0.5

// highValuePhrases are phrasings whose presence marks a candidate as the
// semantically rich one among noisy alternatives.
var highValuePhrases = []string{
	"country code",
	"device type",
	"how did you hear",
	"notice period",
	"work authorization",
	"years of experience",
	"cover letter",
	"start date",
	"current location",
	"salary expectation",
}

// Resolve selects the best label for a control. The result is normalized
// (lowercase, noise-stripped) and deterministic for a given candidate set.
func Resolve(ctl *dom.Control) string {
	best := ""
	bestScore := -1000

	for _, cand := range ctl.Candidates {
		norm := textnorm.Normalize(cand.Text)
		if norm == "" || textnorm.AlphaRatio(norm) < minAlphaRatio {
			continue
		}
		s := score(norm)
		if s > bestScore || (s == bestScore && len(norm) < len(best)) {
			best = norm
			bestScore = s
		}
	}
	if best != "" {
		return best
	}

	// No candidate survived: fall back to raw identity text.
	if ctl.Name != "" {
		if norm := textnorm.SplitIdentifier(ctl.Name); norm != "" {
			return norm
		}
	}
	if ctl.ID != "" {
		if norm := textnorm.SplitIdentifier(ctl.ID); norm != "" {
			return norm
		}
	}
	for _, cand := range ctl.Candidates {
		if cand.Source == dom.SourceAria {
			if norm := textnorm.Normalize(cand.Text); norm != "" {
				return norm
			}
		}
	}
	return Unknown
}

// score prefers multi-word, reasonably sized, known-valuable phrasings.
func score(norm string) int {
	s := 0
	words := len(strings.Fields(norm))
	if words >= 2 {
		s += 2
	}
	if words >= 3 {
		s += 2
	}
	if len(norm) >= 8 {
		s++
	}
	if len(norm) > 120 {
		s -= 3
	}
	for _, phrase := range highValuePhrases {
		if strings.Contains(norm, phrase) {
			s += 3
			break
		}
	}
	return s
}
