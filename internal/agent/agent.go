// Package agent is the host-facing facade: it wires the document provider,
// profile store, engine, ledger, extractor, and learning sync into the
// operations a host invokes per document.
package agent

import (
	"context"

	"github.com/jonathan/form-agent/internal/answer"
	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/engine"
	"github.com/jonathan/form-agent/internal/label"
	"github.com/jonathan/form-agent/internal/learning"
	"github.com/jonathan/form-agent/internal/ledger"
	"github.com/jonathan/form-agent/internal/logging"
	"github.com/jonathan/form-agent/internal/posting"
	"github.com/jonathan/form-agent/internal/profile"
)

// Options configures one agent.
type Options struct {
	Engine engine.Options
	// SyncEndpoint enables best-effort learning sync when non-empty.
	SyncEndpoint string
}

// Agent drives one document. The profile store is re-read on every fill so
// a save from a prior ledger resolution is always visible.
type Agent struct {
	provider dom.Provider
	store    profile.Store
	log      *logging.Logger
	opts     Options
	syncer   *learning.Syncer

	// entries carries unresolved fields between Fill and FillUnknown.
	entries []ledger.Entry
}

// New builds an agent. A nil logger disables logging.
func New(provider dom.Provider, store profile.Store, log *logging.Logger, opts Options) *Agent {
	if log == nil {
		log = logging.Nop()
	}
	return &Agent{
		provider: provider,
		store:    store,
		log:      log,
		opts:     opts,
		syncer:   learning.NewSyncer(opts.SyncEndpoint, log),
	}
}

// Portal reports the detected portal for the current document.
func (a *Agent) Portal() string {
	return string(dom.DetectPlatform(a.provider.Location()))
}

// Fill runs one full fill pass. Host unavailability (provider or store
// unreachable) resolves to an empty result, not an error: callers treat it
// as "nothing happened".
func (a *Agent) Fill(ctx context.Context, resumePath string) (*engine.FillResult, error) {
	rec, err := a.store.Load(ctx)
	if err != nil {
		a.log.Warn("profile store unavailable", "error", err)
		return &engine.FillResult{Portal: a.Portal()}, nil
	}

	eng := engine.New(a.provider, a.log, a.opts.Engine)
	result, err := eng.Fill(ctx, rec, resumePath)
	if err != nil {
		a.log.Warn("document provider unavailable", "error", err)
		return &engine.FillResult{Portal: a.Portal()}, nil
	}

	a.entries = result.Unresolved

	// Best effort, synchronous enough to finish before the process exits.
	a.syncer.Push(ctx, rec, result.Portal)

	return result, nil
}

// FillUnknown replays user-supplied literal answers into the ledger's
// unresolved fields. Heuristic defaults never apply here. Verified answers
// persist into the profile before the result returns, so a subsequent Fill
// sees them.
func (a *Agent) FillUnknown(ctx context.Context, answers []ledger.Answer) (*ledger.ResolveResult, error) {
	rec, err := a.store.Load(ctx)
	if err != nil {
		a.log.Warn("profile store unavailable", "error", err)
		return &ledger.ResolveResult{}, nil
	}

	opts := a.opts.Engine
	opts.Answer = answer.Options{ConservativeDefaults: true}
	eng := engine.New(a.provider, a.log, opts)

	result, err := ledger.Resolve(ctx, a.provider, label.Resolve, eng, rec, a.entries, answers)
	if err != nil {
		return nil, err
	}
	a.entries = result.Unresolved

	if result.Filled > 0 {
		if err := profile.SaveDegrading(ctx, a.store, rec); err != nil {
			a.log.Warn("profile save failed", "error", err)
		}
		a.syncer.Push(ctx, rec, a.Portal())
	}

	return result, nil
}

// Unresolved returns the ledger entries captured by the last Fill,
// re-snapshotted against the live document so a reviewing user sees
// current values and options.
func (a *Agent) Unresolved(ctx context.Context) ([]ledger.Entry, error) {
	if len(a.entries) == 0 {
		return nil, nil
	}
	refreshed, err := ledger.Refresh(ctx, a.provider, label.Resolve, a.entries)
	if err != nil {
		return nil, err
	}
	a.entries = refreshed
	return refreshed, nil
}

// Analyze returns the read-only control census for the current document.
func (a *Agent) Analyze(ctx context.Context) (*engine.Analysis, error) {
	rec, err := a.store.Load(ctx)
	if err != nil {
		rec = nil
	}
	eng := engine.New(a.provider, a.log, a.opts.Engine)
	return eng.Analyze(ctx, rec)
}

// DetectJobPosting extracts a posting record from the current document, nil
// when no source reaches the confidence threshold.
func (a *Agent) DetectJobPosting(ctx context.Context) (*posting.Record, error) {
	html, err := a.provider.HTML(ctx)
	if err != nil {
		a.log.Warn("document provider unavailable", "error", err)
		return nil, nil
	}
	return posting.Extract(html, a.provider.Location())
}

// UpdateProfile applies fn to the stored record and saves it through the
// quota-degrading path.
func (a *Agent) UpdateProfile(ctx context.Context, fn func(*profile.Record)) error {
	rec, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	fn(rec)
	if err := rec.Validate(); err != nil {
		return err
	}
	return profile.SaveDegrading(ctx, a.store, rec)
}
