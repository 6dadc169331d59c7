package ledger

import (
	"context"

	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/textnorm"
)

// Re-match weights. Name and id are strong signals when present; label
// similarity carries the most total weight because it survives attribute
// churn across repaints.
const (
	weightLabel = 6.0
	weightKind  = 3.0
	weightName  = 4.0
	weightID    = 4.0

	// minMatchScore is the combined-score floor for a confident re-match.
	minMatchScore = 7.0
	// minFallbackSimilarity accepts a label-only match when nothing else agrees.
	minFallbackSimilarity = 0.45
)

// Refresh re-discovers controls and re-binds each stale entry to its best
// current match, re-snapshotting value and options. The document may have
// repainted since the entries were created; entries that cannot be
// re-located keep their stale snapshot and are marked field-not-found.
func Refresh(ctx context.Context, provider dom.Provider, resolveLabel func(*dom.Control) string, entries []Entry) ([]Entry, error) {
	controls, err := provider.Discover(ctx)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		ctl   *dom.Control
		label string
	}
	cands := make([]candidate, 0, len(controls))
	for _, ctl := range controls {
		cands = append(cands, candidate{ctl: ctl, label: resolveLabel(ctl)})
	}

	refreshed := make([]Entry, 0, len(entries))
	claimed := make(map[*dom.Control]struct{})

	for _, e := range entries {
		var best *dom.Control
		bestScore := 0.0
		bestSim := 0.0
		var simBest *dom.Control

		for _, c := range cands {
			if _, taken := claimed[c.ctl]; taken {
				continue
			}
			sim := textnorm.Jaccard(e.NormalizedLabel, c.label)
			score := sim * weightLabel
			if c.ctl.Kind == e.Kind {
				score += weightKind
			}
			if e.ControlName != "" && c.ctl.Name == e.ControlName {
				score += weightName
			}
			if e.ControlID != "" && c.ctl.ID == e.ControlID {
				score += weightID
			}
			if score > bestScore {
				bestScore = score
				best = c.ctl
			}
			if sim > bestSim {
				bestSim = sim
				simBest = c.ctl
			}
		}

		switch {
		case best != nil && bestScore >= minMatchScore:
			// confident combined match
		case simBest != nil && bestSim >= minFallbackSimilarity:
			best = simBest
		default:
			best = nil
		}

		if best == nil {
			e.control = nil
			e.Reason = ReasonFieldNotFound
			refreshed = append(refreshed, e)
			continue
		}

		claimed[best] = struct{}{}
		e.control = best
		e.Kind = best.Kind
		e.Required = best.Required
		e.CurrentValue = best.Value
		e.Options = best.Options
		e.ControlName = best.Name
		e.ControlID = best.ID
		refreshed = append(refreshed, e)
	}

	return refreshed, nil
}
