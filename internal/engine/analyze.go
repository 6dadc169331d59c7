package engine

import (
	"context"

	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/fieldtype"
	"github.com/jonathan/form-agent/internal/label"
	"github.com/jonathan/form-agent/internal/profile"
)

// ControlReport describes one discovered control for inspection output.
type ControlReport struct {
	Label     string         `json:"label"`
	Kind      dom.Kind       `json:"kind"`
	FieldType fieldtype.Type `json:"field_type,omitempty"`
	Required  bool           `json:"required"`
	Value     string         `json:"value,omitempty"`
}

// Analysis is a read-only census of the document: which controls were
// recognized, which were not, and which already hold a value.
type Analysis struct {
	Detected      []ControlReport `json:"detected"`
	Undetected    []ControlReport `json:"undetected"`
	AlreadyFilled []ControlReport `json:"already_filled"`
	Portal        string          `json:"portal"`
}

// Analyze discovers and classifies controls without touching any state.
// A nil record analyzes with no learned mappings.
func (e *Engine) Analyze(ctx context.Context, rec *profile.Record) (*Analysis, error) {
	controls, err := e.provider.Discover(ctx)
	if err != nil {
		return nil, err
	}

	var learned map[string]fieldtype.Type
	if rec != nil {
		learned = rec.LearnedMappings
	}

	out := &Analysis{Portal: string(dom.DetectPlatform(e.provider.Location()))}
	for _, ctl := range controls {
		lbl := label.Resolve(ctl)
		ft, ok := fieldtype.Classify(lbl, ctl.Hints, learned)
		rep := ControlReport{
			Label:    lbl,
			Kind:     ctl.Kind,
			Required: ctl.Required,
			Value:    ctl.Value,
		}
		if ok {
			rep.FieldType = ft
			out.Detected = append(out.Detected, rep)
		} else {
			out.Undetected = append(out.Undetected, rep)
		}
		if ctl.Value != "" || ctl.Checked {
			out.AlreadyFilled = append(out.AlreadyFilled, rep)
		}
	}
	return out, nil
}
