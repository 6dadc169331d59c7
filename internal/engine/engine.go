// Package engine orchestrates control discovery, answer resolution,
// kind-specific filling, post-fill verification, bounded retry, and result
// aggregation for one document.
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/jonathan/form-agent/internal/answer"
	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/fieldtype"
	"github.com/jonathan/form-agent/internal/label"
	"github.com/jonathan/form-agent/internal/ledger"
	"github.com/jonathan/form-agent/internal/logging"
	"github.com/jonathan/form-agent/internal/profile"
)

// DefaultMaxAttempts bounds the fill-verify-retry loop per field.
const DefaultMaxAttempts = 3

// DefaultSettleDelay is the pause after a state-changing interaction,
// long enough for asynchronous option population, short enough to keep a
// full pass interactive.
const DefaultSettleDelay = 150 * time.Millisecond

// Options tunes one engine instance.
type Options struct {
	MaxAttempts int
	SettleDelay time.Duration
	Answer      answer.Options
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	return o
}

// Engine drives fill passes over a single document provider. No two passes
// run concurrently: each Fill call re-discovers controls and supersedes any
// prior call's assumptions.
type Engine struct {
	provider dom.Provider
	log      *logging.Logger
	opts     Options
}

// New builds an engine. A nil logger disables logging.
func New(provider dom.Provider, log *logging.Logger, opts Options) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{provider: provider, log: log, opts: opts.withDefaults()}
}

// FillResult aggregates one fill pass. Filled counts every field whose
// interaction was attempted and reported success, including those that later
// failed verification: "acted but unconfirmed" is distinct from "never
// attempted".
type FillResult struct {
	Filled             int            `json:"filled"`
	Total              int            `json:"total"`
	Skipped            int            `json:"skipped"`
	Verified           int            `json:"verified"`
	Retried            int            `json:"retried"`
	VerificationFailed int            `json:"verification_failed"`
	FileUploaded       bool           `json:"file_uploaded"`
	Unresolved         []ledger.Entry `json:"unresolved_fields"`
	Portal             string         `json:"portal"`
}

// workItem is one control annotated through the resolution pipeline.
// Field types are re-derived every pass, never cached on the element:
// document mutation must not leave a stale classification.
type workItem struct {
	ctl     *dom.Control
	label   string
	ft      fieldtype.Type
	hasType bool
}

// Fill runs one full pass: discover, classify, resolve, fill, verify,
// retry, and route residual failures to the ledger. resumePath, when
// non-empty, is uploaded through file controls.
func (e *Engine) Fill(ctx context.Context, rec *profile.Record, resumePath string) (*FillResult, error) {
	controls, err := e.provider.Discover(ctx)
	if err != nil {
		return nil, err
	}

	items := e.annotate(controls, rec)
	result := &FillResult{Portal: string(dom.DetectPlatform(e.provider.Location()))}
	book := ledger.New()

	type postCheck struct {
		item     workItem
		expected string
	}
	var checks []postCheck

	for _, it := range items {
		result.Total++

		if it.ctl.Kind == dom.KindFile {
			e.fillFile(ctx, it, resumePath, result, book)
			continue
		}

		ans, ok := answer.Resolve(it.ft, it.hasType, it.label, it.ctl, rec, e.opts.Answer)
		if !ok {
			e.log.Debug("no answer resolved", "label", it.label)
			book.Record(ledger.NewEntry(it.ctl, it.label, it.ft, ledger.ReasonNoAnswer))
			continue
		}

		// Text-like controls already holding the target are skipped, never
		// counted as filled.
		if (it.ctl.Kind == dom.KindText || it.ctl.Kind == dom.KindTextarea) &&
			valuesMatch(it.ctl.Kind, ans.Value, dom.State{Value: it.ctl.Value}) {
			result.Skipped++
			continue
		}

		allowForced := ans.Heuristic && !e.opts.Answer.ConservativeDefaults &&
			it.ctl.Kind == dom.KindRadioGroup && !(it.hasType && it.ft.LocationKind())

		verified, outcome, expected, err := e.fillWithRetry(ctx, it.ctl, ans.Value, allowForced, result)
		switch {
		case err != nil:
			e.log.Warn("fill interaction failed", "label", it.label, "error", err)
			book.Record(ledger.NewEntry(it.ctl, it.label, it.ft, ledger.ReasonError))
		case outcome == outcomeAlreadySet:
			result.Skipped++
		case outcome == outcomeNoMatch:
			e.log.Debug("no acceptable option", "label", it.label, "answer", ans.Value)
			book.Record(ledger.NewEntry(it.ctl, it.label, it.ft, ledger.ReasonNoAnswer))
		case verified:
			result.Filled++
			result.Verified++
			checks = append(checks, postCheck{item: it, expected: expected})
		default:
			result.Filled++
			result.VerificationFailed++
			book.Record(ledger.NewEntry(it.ctl, it.label, it.ft, ledger.ReasonVerificationFailed))
		}
	}

	// Post-pass: documents sometimes revert values through their own logic
	// after an initial apparent success. Re-verify everything expected to
	// have changed.
	if len(checks) > 0 {
		_ = e.provider.Settle(ctx, e.opts.SettleDelay)
		for _, c := range checks {
			st, err := c.item.ctl.Ref.ReadState(ctx)
			if err == nil && valuesMatch(c.item.ctl.Kind, c.expected, st) {
				continue
			}
			e.log.Warn("value reverted after fill", "label", c.item.label)
			result.Verified--
			result.VerificationFailed++
			book.Record(ledger.NewEntry(c.item.ctl, c.item.label, c.item.ft, ledger.ReasonVerificationFailed))
		}
	}

	result.Unresolved = book.Entries()
	e.log.Info("fill pass complete",
		"total", result.Total, "filled", result.Filled, "verified", result.Verified,
		"skipped", result.Skipped, "unresolved", len(result.Unresolved))
	return result, nil
}

// annotate resolves labels and classifications, then orders controls so
// location selectors fill parent-first (a state selector populated before
// its country may hold the wrong option universe).
func (e *Engine) annotate(controls []*dom.Control, rec *profile.Record) []workItem {
	items := make([]workItem, 0, len(controls))
	for _, ctl := range controls {
		lbl := label.Resolve(ctl)
		ft, ok := fieldtype.Classify(lbl, ctl.Hints, rec.LearnedMappings)
		items = append(items, workItem{ctl: ctl, label: lbl, ft: ft, hasType: ok})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return itemPriority(items[i]) < itemPriority(items[j])
	})
	return items
}

func itemPriority(it workItem) int {
	if !it.hasType {
		return 10
	}
	return it.ft.FillPriority()
}

func (e *Engine) fillFile(ctx context.Context, it workItem, resumePath string, result *FillResult, book *ledger.Ledger) {
	if resumePath == "" {
		book.Record(ledger.NewEntry(it.ctl, it.label, it.ft, ledger.ReasonNoAnswer))
		return
	}
	if st, err := it.ctl.Ref.ReadState(ctx); err == nil && st.Value == resumePath {
		result.Skipped++
		result.FileUploaded = true
		return
	}
	if err := it.ctl.Ref.Upload(ctx, resumePath); err != nil {
		e.log.Warn("file upload failed", "label", it.label, "error", err)
		book.Record(ledger.NewEntry(it.ctl, it.label, it.ft, ledger.ReasonError))
		return
	}
	result.Filled++
	result.FileUploaded = true
}

// fillWithRetry drives the bounded attempt loop for one control. The retry
// handles asynchronous option population: an interaction can succeed while
// the readable state lags one settle behind.
func (e *Engine) fillWithRetry(ctx context.Context, ctl *dom.Control, value string, allowForced bool, result *FillResult) (verified bool, oc outcome, expected string, err error) {
	retried := false
	for attempt := 0; attempt < e.opts.MaxAttempts; attempt++ {
		oc, expected, err = e.apply(ctx, ctl, value, allowForced)
		if err != nil || oc == outcomeAlreadySet || oc == outcomeNoMatch {
			return false, oc, expected, err
		}

		_ = e.provider.Settle(ctx, e.opts.SettleDelay)
		st, rerr := ctl.Ref.ReadState(ctx)
		if rerr == nil && valuesMatch(ctl.Kind, expected, st) {
			return true, oc, expected, nil
		}
		if result != nil && !retried && attempt < e.opts.MaxAttempts-1 {
			result.Retried++
			retried = true
		}
	}
	return false, outcomeApplied, expected, nil
}

// Apply replays a literal value into one control with verification and
// bounded retry, never applying heuristic fallbacks. It satisfies the
// ledger's Filler contract for targeted resolution.
func (e *Engine) Apply(ctx context.Context, ctl *dom.Control, value string) (bool, error) {
	verified, oc, _, err := e.fillWithRetry(ctx, ctl, value, false, nil)
	if err != nil {
		return false, err
	}
	if oc == outcomeAlreadySet {
		return true, nil
	}
	return verified, nil
}
