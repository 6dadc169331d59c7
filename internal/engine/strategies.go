package engine

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/textnorm"
)

// outcome classifies one apply attempt before verification.
type outcome int

const (
	// outcomeApplied means an interaction was performed and its effect
	// still needs verification against read-back state.
	outcomeApplied outcome = iota
	// outcomeAlreadySet means the control already held the target state
	// and no interaction was performed.
	outcomeAlreadySet
	// outcomeNoMatch means an enumerable control offered no acceptable
	// option for the answer.
	outcomeNoMatch
)

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// apply performs the kind-specific fill strategy and returns the literal the
// control is expected to hold afterwards.
func (e *Engine) apply(ctx context.Context, ctl *dom.Control, value string, allowForced bool) (outcome, string, error) {
	switch ctl.Kind {
	case dom.KindText, dom.KindTextarea:
		if err := ctl.Ref.SetValue(ctx, value); err != nil {
			return outcomeApplied, value, err
		}
		return outcomeApplied, value, nil

	case dom.KindCheckbox, dom.KindToggle:
		want := truthy(value)
		if st, err := ctl.Ref.ReadState(ctx); err == nil && st.Checked == want {
			return outcomeAlreadySet, value, nil
		}
		if err := ctl.Ref.SetChecked(ctx, want); err != nil {
			return outcomeApplied, value, err
		}
		return outcomeApplied, value, nil

	case dom.KindSelect, dom.KindDropdown, dom.KindRadioGroup:
		opt, ok := matchOption(value, ctl.Options)
		if !ok {
			if !allowForced {
				return outcomeNoMatch, "", nil
			}
			opt, ok = firstRealOption(ctl.Options)
			if !ok {
				return outcomeNoMatch, "", nil
			}
			e.log.Debug("forcing fallback option", "control", ctl.Identity(), "option", opt.Text)
		}
		if st, err := ctl.Ref.ReadState(ctx); err == nil && st.Value != "" &&
			(st.Value == opt.Value || textnorm.Normalize(st.Value) == textnorm.Normalize(opt.Text)) {
			return outcomeAlreadySet, opt.Value, nil
		}
		if err := ctl.Ref.SelectOption(ctx, opt.Value); err != nil {
			return outcomeApplied, opt.Value, err
		}
		return outcomeApplied, opt.Value, nil

	default:
		return outcomeNoMatch, "", &dom.Error{
			Op:      "apply",
			Control: ctl.Identity(),
			Cause:   fmt.Errorf("unsupported control kind %q", ctl.Kind),
		}
	}
}

// matchOption works down a ladder of increasingly loose comparisons and
// stops at the first rung that produces a match: exact normalized equality,
// bidirectional containment, numeric tolerance, then yes/no polarity.
// Placeholder options never match.
func matchOption(value string, opts []dom.Option) (dom.Option, bool) {
	norm := textnorm.Normalize(value)
	if norm == "" {
		return dom.Option{}, false
	}

	real := make([]dom.Option, 0, len(opts))
	for _, o := range opts {
		if !placeholderOption(o) {
			real = append(real, o)
		}
	}

	for _, o := range real {
		if textnorm.Normalize(o.Text) == norm || textnorm.Normalize(o.Value) == norm {
			return o, true
		}
	}

	if len(norm) >= 2 {
		for _, o := range real {
			ot := textnorm.Normalize(o.Text)
			if ot == "" {
				continue
			}
			if strings.Contains(ot, norm) || strings.Contains(norm, ot) {
				return o, true
			}
		}
	}

	if want, ok := firstNumber(value); ok {
		for _, o := range real {
			if got, ok := firstNumber(o.Text); ok && math.Abs(want-got) < 0.01 {
				return o, true
			}
			if got, ok := firstNumber(o.Value); ok && math.Abs(want-got) < 0.01 {
				return o, true
			}
		}
	}

	if pol := polarity(value); pol != 0 {
		for _, o := range real {
			if polarity(o.Text) == pol {
				return o, true
			}
		}
	}

	return dom.Option{}, false
}

func firstRealOption(opts []dom.Option) (dom.Option, bool) {
	for _, o := range opts {
		if !placeholderOption(o) {
			return o, true
		}
	}
	return dom.Option{}, false
}

var placeholderMarkers = []string{"select", "choose", "please", "pick one", "none"}

func placeholderOption(o dom.Option) bool {
	if strings.TrimSpace(o.Value) == "" && strings.TrimSpace(o.Text) == "" {
		return true
	}
	norm := textnorm.Normalize(o.Text)
	if norm == "" {
		return strings.TrimSpace(o.Value) == ""
	}
	if strings.TrimSpace(o.Value) == "" {
		for _, m := range placeholderMarkers {
			if strings.Contains(norm, m) {
				return true
			}
		}
	}
	return false
}

func firstNumber(s string) (float64, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var negativeWords = map[string]bool{
	"no": true, "n": true, "false": true, "0": true, "not": true,
	"none": true, "never": true, "decline": true, "disagree": true,
}

var positiveWords = map[string]bool{
	"yes": true, "y": true, "true": true, "1": true, "agree": true,
	"authorized": true, "authorised": true, "eligible": true,
	"willing": true, "able": true, "accept": true,
}

// polarity maps a phrase onto yes/no semantics. Negative tokens win over
// positive ones so "not authorized" reads as a refusal.
func polarity(s string) int {
	for _, tok := range strings.Fields(textnorm.Normalize(s)) {
		if negativeWords[tok] {
			return -1
		}
	}
	for _, tok := range strings.Fields(textnorm.Normalize(s)) {
		if positiveWords[tok] {
			return 1
		}
	}
	return 0
}

func truthy(value string) bool {
	return polarity(value) >= 0 && textnorm.Normalize(value) != ""
}
