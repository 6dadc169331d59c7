package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/form-agent/internal/answer"
	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/ledger"
	"github.com/jonathan/form-agent/internal/profile"
)

const fillFixture = `<!DOCTYPE html>
<html><body><form>
  <label for="first_name">First Name</label>
  <input type="text" id="first_name" name="first_name" required>

  <label for="email">Email Address</label>
  <input type="email" id="email" name="email">

  <label for="city">City</label>
  <input type="text" id="city" name="city" value="Portland">

  <label for="country">Country</label>
  <select id="country" name="country">
    <option value="">Select an option</option>
    <option value="US">United States</option>
    <option value="CA">Canada</option>
  </select>

  <fieldset>
    <legend>Are you authorized to work in the United States?</legend>
    <label><input type="radio" name="work_auth" value="yes">Yes</label>
    <label><input type="radio" name="work_auth" value="no">No</label>
  </fieldset>

  <label><input type="checkbox" name="terms" id="terms"> I agree to the terms and privacy policy</label>

  <label for="resume">Resume</label>
  <input type="file" id="resume" name="resume">

  <label for="q_misc">Describe your favorite project</label>
  <textarea id="q_misc" name="q_misc"></textarea>
</form></body></html>`

func testRecord() *profile.Record {
	return &profile.Record{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.com",
		City:           "Portland",
		Country:        "United States",
		WorkAuthorized: "Yes",
	}
}

func newTestEngine(t *testing.T, html string) (*Engine, *dom.StaticProvider) {
	t.Helper()
	provider, err := dom.NewStaticProvider(html, "https://boards.greenhouse.io/acme/jobs/123")
	require.NoError(t, err)
	return New(provider, nil, Options{SettleDelay: time.Millisecond}), provider
}

func unresolvedLabels(res *FillResult) []string {
	labels := make([]string, 0, len(res.Unresolved))
	for _, e := range res.Unresolved {
		labels = append(labels, e.Label)
	}
	return labels
}

func TestFill_FullPass(t *testing.T) {
	eng, _ := newTestEngine(t, fillFixture)

	res, err := eng.Fill(context.Background(), testRecord(), "/tmp/resume.pdf")
	require.NoError(t, err)

	assert.Equal(t, 8, res.Total)
	assert.Equal(t, 6, res.Filled)
	assert.Equal(t, 5, res.Verified)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.VerificationFailed)
	assert.True(t, res.FileUploaded)
	assert.Equal(t, "greenhouse", res.Portal)

	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, ledger.ReasonNoAnswer, res.Unresolved[0].Reason)
	assert.Contains(t, res.Unresolved[0].Label, "favorite project")
}

func TestFill_SelectMatchesOptionText(t *testing.T) {
	eng, provider := newTestEngine(t, fillFixture)

	_, err := eng.Fill(context.Background(), testRecord(), "")
	require.NoError(t, err)

	controls, err := provider.Discover(context.Background())
	require.NoError(t, err)
	for _, ctl := range controls {
		if ctl.Name == "country" {
			assert.Equal(t, "US", ctl.Value)
			return
		}
	}
	t.Fatal("country select not rediscovered")
}

func TestFill_RadioGroupUsesProfileAnswer(t *testing.T) {
	eng, provider := newTestEngine(t, fillFixture)

	_, err := eng.Fill(context.Background(), testRecord(), "")
	require.NoError(t, err)

	controls, err := provider.Discover(context.Background())
	require.NoError(t, err)
	for _, ctl := range controls {
		if ctl.Kind == dom.KindRadioGroup {
			assert.Equal(t, "yes", ctl.Value)
			assert.True(t, ctl.Checked)
			return
		}
	}
	t.Fatal("radio group not rediscovered")
}

func TestFill_AlreadyHeldTextSkipped(t *testing.T) {
	eng, _ := newTestEngine(t, fillFixture)

	res, err := eng.Fill(context.Background(), testRecord(), "")
	require.NoError(t, err)

	// City already holds "Portland"; it must count as skipped, not filled.
	assert.Equal(t, 1, res.Skipped)
	assert.NotContains(t, unresolvedLabels(res), "City")
}

func TestFill_MissingResumeGoesToLedger(t *testing.T) {
	eng, _ := newTestEngine(t, fillFixture)

	res, err := eng.Fill(context.Background(), testRecord(), "")
	require.NoError(t, err)

	assert.False(t, res.FileUploaded)
	found := false
	for _, e := range res.Unresolved {
		if e.Kind == dom.KindFile {
			found = true
			assert.Equal(t, ledger.ReasonNoAnswer, e.Reason)
		}
	}
	assert.True(t, found, "file control should be unresolved without a resume path")
}

func TestFill_IdempotentSecondPass(t *testing.T) {
	eng, _ := newTestEngine(t, fillFixture)
	ctx := context.Background()

	first, err := eng.Fill(ctx, testRecord(), "/tmp/resume.pdf")
	require.NoError(t, err)
	require.Positive(t, first.Filled)
	require.True(t, first.FileUploaded)

	second, err := eng.Fill(ctx, testRecord(), "/tmp/resume.pdf")
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	// Everything filled in pass one reads back as already set in pass two,
	// the earlier upload included.
	assert.Equal(t, 0, second.Filled)
	assert.Equal(t, 0, second.VerificationFailed)
	assert.Equal(t, first.Filled+first.Skipped, second.Filled+second.Skipped)
	assert.True(t, second.FileUploaded)

	require.Len(t, second.Unresolved, len(first.Unresolved))
	for i, e := range second.Unresolved {
		assert.Equal(t, first.Unresolved[i].Label, e.Label)
		assert.Equal(t, first.Unresolved[i].Reason, e.Reason)
	}
}

func TestFill_RevertedValueRetriesThenFails(t *testing.T) {
	eng, provider := newTestEngine(t, fillFixture)
	provider.OnMutate = func(key string, st dom.State) dom.State {
		if key == "id:email" {
			return dom.State{}
		}
		return st
	}

	res, err := eng.Fill(context.Background(), testRecord(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Retried)
	assert.Equal(t, 1, res.VerificationFailed)

	found := false
	for _, e := range res.Unresolved {
		if e.ControlID == "email" {
			found = true
			assert.Equal(t, ledger.ReasonVerificationFailed, e.Reason)
		}
	}
	assert.True(t, found, "reverted field should land in the ledger")
}

func TestFill_ConservativeSkipsConsentHeuristic(t *testing.T) {
	provider, err := dom.NewStaticProvider(fillFixture, "")
	require.NoError(t, err)
	eng := New(provider, nil, Options{
		SettleDelay: time.Millisecond,
		Answer:      answer.Options{ConservativeDefaults: true},
	})

	res, err := eng.Fill(context.Background(), testRecord(), "")
	require.NoError(t, err)

	found := false
	for _, e := range res.Unresolved {
		if e.ControlID == "terms" {
			found = true
			assert.Equal(t, ledger.ReasonNoAnswer, e.Reason)
		}
	}
	assert.True(t, found, "consent checkbox must stay untouched in conservative mode")
}

func TestFill_ForcedFallbackOnHeuristicRadio(t *testing.T) {
	const html = `<form>
	  <fieldset>
	    <legend>Are you willing to relocate for this role?</legend>
	    <label><input type="radio" name="reloc" value="immediate">Immediately</label>
	    <label><input type="radio" name="reloc" value="notice">After notice period</label>
	  </fieldset>
	</form>`
	eng, provider := newTestEngine(t, html)

	res, err := eng.Fill(context.Background(), &profile.Record{}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Filled)

	controls, err := provider.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, controls, 1)
	assert.Equal(t, "immediate", controls[0].Value)
}

func TestFill_LocationSelectWithoutMatchStaysUnresolved(t *testing.T) {
	const html = `<form>
	  <label for="country">Country</label>
	  <select id="country" name="country">
	    <option value="">Choose</option>
	    <option value="DE">Germany</option>
	    <option value="FR">France</option>
	  </select>
	</form>`
	eng, provider := newTestEngine(t, html)

	res, err := eng.Fill(context.Background(), testRecord(), "")
	require.NoError(t, err)

	assert.Equal(t, 0, res.Filled)
	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, ledger.ReasonNoAnswer, res.Unresolved[0].Reason)

	controls, err := provider.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", controls[0].Value)
}

// flakyRef verifies once, then reports an empty state. It simulates a
// document whose own logic clears a value after the first read-back.
type flakyRef struct {
	value string
	reads int
}

func (r *flakyRef) ReadState(context.Context) (dom.State, error) {
	r.reads++
	if r.reads == 1 {
		return dom.State{Value: r.value}, nil
	}
	return dom.State{}, nil
}

func (r *flakyRef) SetValue(_ context.Context, v string) error { r.value = v; return nil }
func (r *flakyRef) SelectOption(context.Context, string) error { return nil }
func (r *flakyRef) SetChecked(context.Context, bool) error     { return nil }
func (r *flakyRef) Upload(context.Context, string) error       { return nil }

// fixedProvider serves a prebuilt control list.
type fixedProvider struct {
	controls []*dom.Control
}

func (p *fixedProvider) Discover(context.Context) ([]*dom.Control, error) { return p.controls, nil }
func (p *fixedProvider) Settle(context.Context, time.Duration) error      { return nil }
func (p *fixedProvider) HTML(context.Context) (string, error)             { return "", nil }
func (p *fixedProvider) Location() string                                 { return "" }

func TestFill_PostPassCatchesLateRevert(t *testing.T) {
	ctl := &dom.Control{
		Kind:       dom.KindText,
		Name:       "first_name",
		Candidates: []dom.LabelCandidate{{Source: dom.SourceLabelFor, Text: "First Name"}},
		Ref:        &flakyRef{},
	}
	eng := New(&fixedProvider{controls: []*dom.Control{ctl}}, nil, Options{SettleDelay: time.Millisecond})

	res, err := eng.Fill(context.Background(), testRecord(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, res.Filled)
	assert.Equal(t, 0, res.Verified)
	assert.Equal(t, 1, res.VerificationFailed)
	require.Len(t, res.Unresolved, 1)
	assert.Equal(t, ledger.ReasonVerificationFailed, res.Unresolved[0].Reason)
}

func TestApply_LiteralValueWithoutHeuristics(t *testing.T) {
	eng, provider := newTestEngine(t, fillFixture)
	controls, err := provider.Discover(context.Background())
	require.NoError(t, err)

	var email *dom.Control
	for _, ctl := range controls {
		if ctl.ID == "email" {
			email = ctl
		}
	}
	require.NotNil(t, email)

	ok, err := eng.Apply(context.Background(), email, "grace@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	st, err := email.Ref.ReadState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", st.Value)
}

func TestAnalyze_Census(t *testing.T) {
	eng, _ := newTestEngine(t, fillFixture)

	analysis, err := eng.Analyze(context.Background(), testRecord())
	require.NoError(t, err)

	assert.Equal(t, "greenhouse", analysis.Portal)
	assert.NotEmpty(t, analysis.Detected)

	misc := false
	for _, rep := range analysis.Undetected {
		if strings.Contains(rep.Label, "favorite project") {
			misc = true
		}
	}
	assert.True(t, misc, "free-text question should be undetected")

	require.NotEmpty(t, analysis.AlreadyFilled)
	prefilled := false
	for _, rep := range analysis.AlreadyFilled {
		if rep.Value == "Portland" {
			prefilled = true
		}
	}
	assert.True(t, prefilled)
}
