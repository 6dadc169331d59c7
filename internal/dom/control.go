// Package dom defines the document-provider boundary: discovery of
// interactive controls on a live, mutable document, and the interaction
// surface used to fill and re-read them. The engine depends only on the
// interfaces here; the static and chrome providers are edge adapters.
package dom

import (
	"context"
	"fmt"
	"time"
)

// Kind tags a control descriptor. All downstream logic switches on the tag
// and never re-inspects raw attributes.
type Kind string

const (
	// KindText is a single-line text-like input (text, email, tel, url, number, date).
	KindText Kind = "text"
	// KindTextarea is a multi-line text input.
	KindTextarea Kind = "textarea"
	// KindSelect is a native select element.
	KindSelect Kind = "select"
	// KindRadioGroup is a logical group of same-name radio inputs.
	KindRadioGroup Kind = "radio-group"
	// KindCheckbox is a single checkbox input.
	KindCheckbox Kind = "checkbox"
	// KindToggle is a switch-style boolean control (role="switch").
	KindToggle Kind = "toggle"
	// KindDropdown is a custom widget acting as a select (role="combobox" etc.).
	KindDropdown Kind = "custom-dropdown"
	// KindFile is a file upload input.
	KindFile Kind = "file"
)

// Enumerable reports whether the kind carries an option set.
func (k Kind) Enumerable() bool {
	switch k {
	case KindSelect, KindRadioGroup, KindDropdown:
		return true
	}
	return false
}

// Boolean reports whether the kind holds a checked/unchecked state.
func (k Kind) Boolean() bool {
	return k == KindCheckbox || k == KindToggle
}

// Option is one selectable entry of an enumerable control.
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// LabelCandidate is one raw label string gathered at discovery time,
// tagged with where it came from so the resolver can weigh sources.
type LabelCandidate struct {
	Source string
	Text   string
}

// Candidate source tags, strongest association first.
const (
	SourceLabelFor    = "label-for"
	SourceAncestor    = "ancestor-label"
	SourceLegend      = "legend"
	SourceAria        = "aria"
	SourceSibling     = "sibling"
	SourcePlaceholder = "placeholder"
	SourceTitle       = "title"
	SourceName        = "name"
	SourceID          = "id"
)

// AttrHints carries the declared-purpose attributes consulted by the
// classifier fallback.
type AttrHints struct {
	InputType    string
	Autocomplete string
	Placeholder  string
}

// State is a point-in-time read of a control's actual value.
type State struct {
	Value   string
	Checked bool
}

// Ref is the live handle to a discovered control. All methods act on the
// underlying document; ReadState always reflects the document's current
// truth, never a cached value.
type Ref interface {
	ReadState(ctx context.Context) (State, error)
	// SetValue assigns a literal value to a text-like control and dispatches
	// the document's change notification.
	SetValue(ctx context.Context, value string) error
	// SelectOption selects the option with the given value on an enumerable
	// control (for radio groups this clicks the matching member).
	SelectOption(ctx context.Context, optionValue string) error
	// SetChecked toggles a boolean control to the requested state.
	SetChecked(ctx context.Context, checked bool) error
	// Upload attaches a local file to a file control.
	Upload(ctx context.Context, path string) error
}

// Control is the descriptor produced once per discovery pass. Descriptors
// are never persisted and never reused across passes: the document mutates,
// so a fresh pass always rebuilds them.
type Control struct {
	Kind       Kind
	Name       string
	ID         string
	Required   bool
	Value      string
	Checked    bool
	Options    []Option
	Candidates []LabelCandidate
	Hints      AttrHints
	Ref        Ref
}

// Identity returns the control's name/id hint for logging and ledger keys.
func (c *Control) Identity() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Provider exposes a live document to the engine.
type Provider interface {
	// Discover enumerates all currently visible, enabled controls, folding
	// same-name radio inputs into single group descriptors.
	Discover(ctx context.Context) ([]*Control, error)
	// Settle waits for the document to absorb a state-changing interaction
	// (asynchronous option population, framework re-renders).
	Settle(ctx context.Context, d time.Duration) error
	// HTML returns the current serialized document for posting extraction.
	HTML(ctx context.Context) (string, error)
	// Location returns the document's URL, empty when unknown.
	Location() string
}

// Error wraps a provider failure with the control it concerns.
type Error struct {
	Op      string
	Control string
	Cause   error
}

func (e *Error) Error() string {
	if e.Control != "" {
		return fmt.Sprintf("dom %s failed for %q: %v", e.Op, e.Control, e.Cause)
	}
	return fmt.Sprintf("dom %s failed: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
