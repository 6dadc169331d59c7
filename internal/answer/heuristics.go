package answer

import (
	"strings"

	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/fieldtype"
	"github.com/jonathan/form-agent/internal/textnorm"
)

// hearAboutDefault is the boilerplate answer for source-tracking questions.
const hearAboutDefault = "Online job board"

// positiveBank holds label substrings whose yes/no questions default to
// "yes". These defaults are placeholders flagged for user confirmation,
// not biographical claims.
var positiveBank = []string{
	"authorized to work",
	"authorised to work",
	"eligible to work",
	"legally able to work",
	"right to work",
	"18 years",
	"willing to relocate",
	"willing to travel",
	"able to perform",
	"background check",
	"agree to",
	"consent",
	"acknowledge",
	"accept the",
}

// negativeBank holds label substrings whose yes/no questions default to "no".
var negativeBank = []string{
	"require sponsorship",
	"requires sponsorship",
	"require visa",
	"need sponsorship",
	"need a visa",
	"non compete",
	"noncompete",
	"previously employed",
	"previously worked",
	"currently employed by",
	"related to anyone",
	"relative",
	"convicted",
	"felony",
	"criminal",
	"government official",
}

// consentMarkers identify checkbox labels that are agreement boxes rather
// than questions.
var consentMarkers = []string{
	"terms", "privacy", "consent", "agree", "acknowledge", "certify", "confirm",
}

// heuristicDefault produces a best-effort answer when no stored data
// applies. The default-yes policy for unmatched boolean questions is a
// deliberate, configurable bias (see Options.ConservativeDefaults).
func heuristicDefault(t fieldtype.Type, hasType bool, label string, ctl *dom.Control) (string, bool) {
	norm := textnorm.Normalize(label)

	if hasType && t == fieldtype.HowDidYouHear {
		return hearAboutDefault, true
	}

	for _, marker := range negativeBank {
		if strings.Contains(norm, marker) {
			return "no", true
		}
	}
	for _, marker := range positiveBank {
		if strings.Contains(norm, marker) {
			return "yes", true
		}
	}

	switch ctl.Kind {
	case dom.KindCheckbox, dom.KindToggle:
		for _, marker := range consentMarkers {
			if strings.Contains(norm, marker) {
				return "yes", true
			}
		}
	case dom.KindRadioGroup:
		// Boolean-looking radio groups default to the affirmative option.
		if isYesNoGroup(ctl.Options) {
			return "yes", true
		}
	}

	return "", false
}

// isYesNoGroup reports whether the option set is a plain yes/no choice.
func isYesNoGroup(opts []dom.Option) bool {
	if len(opts) < 2 || len(opts) > 3 {
		return false
	}
	hasYes, hasNo := false, false
	for _, o := range opts {
		switch textnorm.Normalize(o.Text) {
		case "yes", "y", "true":
			hasYes = true
		case "no", "n", "false":
			hasNo = true
		}
	}
	return hasYes && hasNo
}
