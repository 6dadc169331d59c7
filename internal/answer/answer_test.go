package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/fieldtype"
	"github.com/jonathan/form-agent/internal/profile"
)

func textControl() *dom.Control {
	return &dom.Control{Kind: dom.KindText}
}

func TestResolve_ExactCustomAnswerWins(t *testing.T) {
	rec := &profile.Record{Email: "ada@example.com"}
	rec.SetCustomAnswer("Work Email", "ada@corp.example.com")

	ans, ok := Resolve(fieldtype.Email, true, "Work Email", textControl(), rec, Options{})
	assert.True(t, ok)
	assert.Equal(t, "ada@corp.example.com", ans.Value)
	assert.Equal(t, SourceCustomExact, ans.Source)
}

func TestResolve_NormalizedCustomAnswer(t *testing.T) {
	rec := &profile.Record{}
	rec.SetCustomAnswer("Why are you interested in this role?", "The mission.")

	ans, ok := Resolve("", false, "why are you interested in this role", textControl(), rec, Options{})
	assert.True(t, ok)
	assert.Equal(t, "The mission.", ans.Value)
}

func TestResolve_SimilarityCustomAnswer(t *testing.T) {
	rec := &profile.Record{}
	rec.SetCustomAnswer("Why are you interested in this role?", "The mission.")

	// New phrasing, same question: token overlap clears 0.65. Rephrasings
	// that share almost no tokens ("why do you want to join us") stay below
	// the threshold on purpose; the matcher only bridges near-identical
	// wording, not paraphrase.
	ans, ok := Resolve("", false, "Why are you interested in this position role?", textControl(), rec, Options{})
	assert.True(t, ok)
	assert.Equal(t, "The mission.", ans.Value)
	assert.Equal(t, SourceCustomSimilarity, ans.Source)
}

func TestResolve_SimilarityBelowThresholdMisses(t *testing.T) {
	rec := &profile.Record{}
	rec.SetCustomAnswer("Why are you interested in this role?", "The mission.")

	_, ok := Resolve("", false, "Describe your leadership style", textControl(), rec, Options{ConservativeDefaults: true})
	assert.False(t, ok)
}

func TestResolve_ProfileDictionary(t *testing.T) {
	rec := &profile.Record{Phone: "+1 555 0100"}

	ans, ok := Resolve(fieldtype.Phone, true, "phone number", textControl(), rec, Options{})
	assert.True(t, ok)
	assert.Equal(t, "+1 555 0100", ans.Value)
	assert.Equal(t, SourceProfile, ans.Source)
	assert.False(t, ans.Heuristic)
}

func TestResolve_SensitiveTypesNeverFabricated(t *testing.T) {
	rec := &profile.Record{FirstName: "Ada"}

	for _, ft := range []fieldtype.Type{fieldtype.Gender, fieldtype.Ethnicity, fieldtype.Veteran, fieldtype.Disability} {
		_, ok := Resolve(ft, true, "demographic question", textControl(), rec, Options{})
		assert.False(t, ok, string(ft))
	}
}

func TestResolve_SensitiveTypeHonorsExplicitCustomAnswer(t *testing.T) {
	rec := &profile.Record{}
	rec.SetCustomAnswer("Gender", "Prefer not to say")

	ans, ok := Resolve(fieldtype.Gender, true, "Gender", textControl(), rec, Options{})
	assert.True(t, ok)
	assert.Equal(t, "Prefer not to say", ans.Value)
}

func TestResolve_HowDidYouHearBoilerplate(t *testing.T) {
	rec := &profile.Record{}
	ans, ok := Resolve(fieldtype.HowDidYouHear, true, "how did you hear about us", textControl(), rec, Options{})
	assert.True(t, ok)
	assert.Equal(t, hearAboutDefault, ans.Value)
	assert.True(t, ans.Heuristic)
}

func TestResolve_YesNoBanks(t *testing.T) {
	rec := &profile.Record{}

	ans, ok := Resolve(fieldtype.WorkAuth, true, "are you authorized to work in the united states", textControl(), rec, Options{})
	assert.True(t, ok)
	assert.Equal(t, "yes", ans.Value)
	assert.True(t, ans.Heuristic)

	ans, ok = Resolve(fieldtype.Sponsorship, true, "will you require sponsorship", textControl(), rec, Options{})
	assert.True(t, ok)
	assert.Equal(t, "no", ans.Value)
}

func TestResolve_ConsentCheckboxDefaultsTrue(t *testing.T) {
	rec := &profile.Record{}
	ctl := &dom.Control{Kind: dom.KindCheckbox}

	ans, ok := Resolve("", false, "i agree to the terms and privacy policy", ctl, rec, Options{})
	assert.True(t, ok)
	assert.Equal(t, "yes", ans.Value)
}

func TestResolve_RadioGroupDefaultYes(t *testing.T) {
	rec := &profile.Record{}
	ctl := &dom.Control{
		Kind: dom.KindRadioGroup,
		Options: []dom.Option{
			{Value: "1", Text: "Yes"},
			{Value: "0", Text: "No"},
		},
	}

	ans, ok := Resolve("", false, "can you lift fifty pounds", ctl, rec, Options{})
	assert.True(t, ok)
	assert.Equal(t, "yes", ans.Value)
}

func TestResolve_ConservativeDisablesHeuristics(t *testing.T) {
	rec := &profile.Record{}
	opts := Options{ConservativeDefaults: true}

	_, ok := Resolve(fieldtype.WorkAuth, true, "are you authorized to work", textControl(), rec, opts)
	assert.False(t, ok)

	ctl := &dom.Control{Kind: dom.KindCheckbox}
	_, ok = Resolve("", false, "i agree to the terms", ctl, rec, opts)
	assert.False(t, ok)
}

func TestResolve_NoAnswerForUnknown(t *testing.T) {
	rec := &profile.Record{}
	_, ok := Resolve("", false, "favorite dinosaur", textControl(), rec, Options{})
	assert.False(t, ok)
}
