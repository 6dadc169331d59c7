// Package ledger records the fields the engine could not confidently
// resolve, re-snapshots them against the live document, and replays
// user-supplied answers into exactly the matched controls.
package ledger

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/fieldtype"
	"github.com/jonathan/form-agent/internal/textnorm"
)

// Reason explains why a field landed in the ledger. Always human-readable:
// the ledger is the single surface for residual failures.
type Reason string

const (
	// ReasonNoAnswer means no field type or no answer resolved.
	ReasonNoAnswer Reason = "no-answer"
	// ReasonVerificationFailed means a value was assigned but never confirmed.
	ReasonVerificationFailed Reason = "verification-failed"
	// ReasonError means the fill strategy itself failed.
	ReasonError Reason = "error"
	// ReasonFieldNotFound means refresh could not re-locate the control.
	ReasonFieldNotFound Reason = "field-not-found"
)

// Entry is one unresolved field. CurrentValue and Options are snapshots
// taken at creation or last refresh; the underlying document may have
// changed since, which is why refresh exists.
type Entry struct {
	ID              string         `json:"id"`
	Label           string         `json:"label"`
	NormalizedLabel string         `json:"normalized_label"`
	Kind            dom.Kind       `json:"kind"`
	FieldType       fieldtype.Type `json:"field_type,omitempty"`
	Reason          Reason         `json:"reason"`
	Required        bool           `json:"required"`
	CurrentValue    string         `json:"current_value,omitempty"`
	Options         []dom.Option   `json:"options,omitempty"`
	ControlName     string         `json:"control_name,omitempty"`
	ControlID       string         `json:"control_id,omitempty"`

	// control is the live handle from the most recent discovery pass.
	// Nil after the document repainted; refresh re-binds it.
	control *dom.Control
}

// NewEntry snapshots a control into an unresolved entry.
func NewEntry(ctl *dom.Control, lbl string, ft fieldtype.Type, reason Reason) Entry {
	return Entry{
		ID:              uuid.NewString(),
		Label:           lbl,
		NormalizedLabel: textnorm.Normalize(lbl),
		Kind:            ctl.Kind,
		FieldType:       ft,
		Reason:          reason,
		Required:        ctl.Required,
		CurrentValue:    ctl.Value,
		Options:         ctl.Options,
		ControlName:     ctl.Name,
		ControlID:       ctl.ID,
		control:         ctl,
	}
}

// Key deduplicates entries describing the same logical field.
func (e *Entry) Key() string {
	ident := e.ControlName
	if ident == "" {
		ident = e.ControlID
	}
	return fmt.Sprintf("%s|%s|%s", e.NormalizedLabel, e.Kind, ident)
}

// Control returns the bound live control, nil when stale.
func (e *Entry) Control() *dom.Control {
	return e.control
}

// Ledger accumulates entries for one fill pass, deduplicated by key.
type Ledger struct {
	entries []Entry
	seen    map[string]struct{}
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// Record adds an entry unless an equivalent one is already present.
func (l *Ledger) Record(e Entry) {
	key := e.Key()
	if _, dup := l.seen[key]; dup {
		return
	}
	l.seen[key] = struct{}{}
	l.entries = append(l.entries, e)
}

// Entries returns the recorded entries in insertion order.
func (l *Ledger) Entries() []Entry {
	return l.entries
}
