// Package answer selects the best-available answer for a classified
// control from profile data, fuzzy-matched custom answers, and heuristic
// defaults.
package answer

import (
	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/fieldtype"
	"github.com/jonathan/form-agent/internal/profile"
	"github.com/jonathan/form-agent/internal/textnorm"
)

// similarityThreshold is the minimum token Jaccard similarity for a custom
// answer stored under a different phrasing to be reused.
const similarityThreshold = 0.65

// Options tunes resolution policy.
type Options struct {
	// ConservativeDefaults disables every heuristic yes/no default. Ledger
	// resolution always runs with this set: a user-confirmed replay must
	// never fall back to a guessed answer.
	ConservativeDefaults bool
}

// Source identifies where a resolved answer came from.
type Source string

const (
	SourceCustomExact      Source = "custom-exact"
	SourceCustomNormalized Source = "custom-normalized"
	SourceCustomSimilarity Source = "custom-similarity"
	SourceProfile          Source = "profile"
	SourceHeuristic        Source = "heuristic"
)

// Answer is a resolved value. Heuristic answers are best-effort
// placeholders the user should confirm, not biographical facts.
type Answer struct {
	Value     string
	Source    Source
	Heuristic bool
}

// Resolve returns the best answer for a control, or false when nothing
// resolves. hasType is false when classification failed; custom-answer
// matching still applies because it keys on the label, not the type.
func Resolve(t fieldtype.Type, hasType bool, label string, ctl *dom.Control, rec *profile.Record, opts Options) (Answer, bool) {
	// (1) + (2): exact raw, then normalized custom-answer match.
	if rec.CustomAnswers != nil {
		if v, ok := rec.CustomAnswers[label]; ok {
			return Answer{Value: v, Source: SourceCustomExact}, true
		}
		if v, ok := rec.CustomAnswers[textnorm.Normalize(label)]; ok {
			return Answer{Value: v, Source: SourceCustomNormalized}, true
		}
	}

	// (3): similarity-ranked custom answer. Ties between distinct values
	// stay unresolved; a wrong confident answer is worse than none.
	if v, ok := similarityMatch(label, rec.CustomAnswers); ok {
		return Answer{Value: v, Source: SourceCustomSimilarity}, true
	}

	if hasType {
		// Never fabricate privacy-sensitive values. An explicit custom
		// answer above is the only way these fill.
		if t.Sensitive() {
			return Answer{}, false
		}

		// (4): field-type → profile attribute dictionary.
		if v := rec.Attribute(t); v != "" {
			return Answer{Value: v, Source: SourceProfile}, true
		}
	}

	// (5): heuristic defaults.
	if opts.ConservativeDefaults {
		return Answer{}, false
	}
	if v, ok := heuristicDefault(t, hasType, label, ctl); ok {
		return Answer{Value: v, Source: SourceHeuristic, Heuristic: true}, true
	}

	return Answer{}, false
}

// similarityMatch scans stored custom answers for the phrasing closest to
// label. The raw and normalized keys of one stored answer share a value, so
// a tie between them resolves; a tie between different values does not.
func similarityMatch(label string, answers map[string]string) (string, bool) {
	if len(answers) == 0 {
		return "", false
	}

	bestScore := 0.0
	bestValue := ""
	tied := false

	for key, value := range answers {
		score := textnorm.Jaccard(label, key)
		if score < similarityThreshold {
			continue
		}
		switch {
		case score > bestScore:
			bestScore = score
			bestValue = value
			tied = false
		case score == bestScore && value != bestValue:
			tied = true
		}
	}

	if bestValue == "" || tied {
		return "", false
	}
	return bestValue, true
}
