package ledger

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/fieldtype"
	"github.com/jonathan/form-agent/internal/profile"
	"github.com/jonathan/form-agent/internal/textnorm"
)

// Answer is a user-supplied literal answer for a ledger entry.
type Answer struct {
	Label     string         `json:"label" validate:"required"`
	Value     string         `json:"value" validate:"required"`
	FieldType fieldtype.Type `json:"field_type,omitempty"`
}

var validateAnswers = validator.New()

// ValidateAnswers rejects structurally empty answer payloads before any
// document interaction happens.
func ValidateAnswers(answers []Answer) error {
	for i := range answers {
		if err := validateAnswers.Struct(&answers[i]); err != nil {
			return err
		}
	}
	return nil
}

// Filler applies a literal value to a control and reports whether the
// result verified. The engine satisfies this; the indirection keeps the
// ledger free of fill-strategy internals.
type Filler interface {
	Apply(ctx context.Context, ctl *dom.Control, value string) (bool, error)
}

// ResolveResult reports a targeted resolution pass.
type ResolveResult struct {
	Filled     int     `json:"filled"`
	Total      int     `json:"total"`
	Unresolved []Entry `json:"unresolved_fields"`
}

// Resolve replays user answers into their matched controls. Entries are
// refreshed first because the document may have repainted since they were
// recorded. Successful answers are persisted into the profile under both
// raw and normalized label keys, plus the learned-mapping store when a
// field type is known. No heuristic fallback applies here: only the
// caller's literal answers are used.
func Resolve(ctx context.Context, provider dom.Provider, resolveLabel func(*dom.Control) string, filler Filler, rec *profile.Record, entries []Entry, answers []Answer) (*ResolveResult, error) {
	if err := ValidateAnswers(answers); err != nil {
		return nil, err
	}

	refreshed, err := Refresh(ctx, provider, resolveLabel, entries)
	if err != nil {
		return nil, err
	}

	byLabel := make(map[string]Answer, len(answers))
	for _, a := range answers {
		byLabel[textnorm.Normalize(a.Label)] = a
	}

	result := &ResolveResult{Total: len(refreshed)}

	for _, e := range refreshed {
		ans, ok := byLabel[e.NormalizedLabel]
		if !ok {
			result.Unresolved = append(result.Unresolved, e)
			continue
		}
		if e.Control() == nil {
			e.Reason = ReasonFieldNotFound
			result.Unresolved = append(result.Unresolved, e)
			continue
		}

		verified, err := filler.Apply(ctx, e.Control(), ans.Value)
		switch {
		case err != nil:
			e.Reason = ReasonError
			result.Unresolved = append(result.Unresolved, e)
		case !verified:
			e.Reason = ReasonVerificationFailed
			result.Unresolved = append(result.Unresolved, e)
		default:
			result.Filled++
			rec.SetCustomAnswer(e.Label, ans.Value)
			ft := ans.FieldType
			if ft == "" {
				ft = e.FieldType
			}
			if ft != "" {
				rec.LearnMapping(e.Label, ft)
			}
		}
	}

	return result, nil
}
