package engine

import (
	"strings"

	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/textnorm"
)

// valuesMatch decides whether an observed control state satisfies the
// literal a strategy aimed for. Boolean controls compare checkedness, text
// controls compare normalized values with bidirectional containment so a
// select that displays "United States of America" verifies against
// "United States".
func valuesMatch(kind dom.Kind, expected string, st dom.State) bool {
	if kind.Boolean() {
		return truthy(expected) == st.Checked
	}

	want := textnorm.Normalize(expected)
	got := textnorm.Normalize(st.Value)
	if want == "" {
		return got == ""
	}
	if got == want {
		return true
	}
	if got != "" && (strings.Contains(got, want) || strings.Contains(want, got)) {
		return true
	}
	// Raw comparison covers opaque option values ("US") whose normalized
	// form diverges from the displayed text.
	return st.Value != "" && st.Value == expected
}
