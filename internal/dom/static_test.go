package dom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureForm = `
<html><body>
<form>
  <label for="fn">First Name *</label>
  <input type="text" id="fn" name="first_name" required>

  <label>Email Address
    <input type="email" name="email" autocomplete="email">
  </label>

  <div>Phone Number</div>
  <input type="tel" name="phone">

  <label for="country">Country</label>
  <select id="country" name="country">
    <option value="">Select an option</option>
    <option value="us">United States</option>
    <option value="ca">Canada</option>
  </select>

  <fieldset>
    <legend>Are you authorized to work in the US?</legend>
    <input type="radio" id="auth-yes" name="work_auth" value="yes">
    <label for="auth-yes">Yes</label>
    <input type="radio" id="auth-no" name="work_auth" value="no">
    <label for="auth-no">No</label>
  </fieldset>

  <label for="tc">I agree to the terms</label>
  <input type="checkbox" id="tc" name="terms">

  <textarea name="cover_letter" placeholder="Why do you want to join us?"></textarea>

  <input type="file" name="resume">

  <input type="hidden" name="csrf" value="tok">
  <input type="submit" value="Apply">
  <input type="text" name="honeypot" hidden>
  <div style="display:none"><input type="text" name="invisible"></div>
</form>
</body></html>`

func discover(t *testing.T, html string) []*Control {
	t.Helper()
	p, err := NewStaticProvider(html, "https://boards.greenhouse.io/acme/jobs/1")
	require.NoError(t, err)
	controls, err := p.Discover(context.Background())
	require.NoError(t, err)
	return controls
}

func findByName(controls []*Control, name string) *Control {
	for _, c := range controls {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestDiscover_SkipsHiddenAndNonFillable(t *testing.T) {
	controls := discover(t, fixtureForm)

	assert.Nil(t, findByName(controls, "csrf"))
	assert.Nil(t, findByName(controls, "honeypot"))
	assert.Nil(t, findByName(controls, "invisible"))
}

func TestDiscover_Kinds(t *testing.T) {
	controls := discover(t, fixtureForm)

	assert.Equal(t, KindText, findByName(controls, "first_name").Kind)
	assert.Equal(t, KindText, findByName(controls, "email").Kind)
	assert.Equal(t, KindSelect, findByName(controls, "country").Kind)
	assert.Equal(t, KindRadioGroup, findByName(controls, "work_auth").Kind)
	assert.Equal(t, KindCheckbox, findByName(controls, "terms").Kind)
	assert.Equal(t, KindTextarea, findByName(controls, "cover_letter").Kind)
	assert.Equal(t, KindFile, findByName(controls, "resume").Kind)
}

func TestDiscover_RadioGroupFolding(t *testing.T) {
	controls := discover(t, fixtureForm)

	group := findByName(controls, "work_auth")
	require.NotNil(t, group)
	require.Len(t, group.Options, 2)
	assert.Equal(t, "yes", group.Options[0].Value)
	assert.Equal(t, "Yes", group.Options[0].Text)
	assert.Equal(t, "no", group.Options[1].Value)

	// Only one descriptor for the whole group.
	count := 0
	for _, c := range controls {
		if c.Name == "work_auth" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDiscover_MultipleRadioGroupsKeepDocumentOrder(t *testing.T) {
	const multiGroupForm = `
<html><body><form>
  <input type="text" name="first_name">
  <fieldset>
    <legend>Do you require sponsorship?</legend>
    <input type="radio" name="sponsorship" value="yes"><label>Yes</label>
    <input type="radio" name="sponsorship" value="no"><label>No</label>
  </fieldset>
  <input type="text" name="email">
  <fieldset>
    <legend>Are you willing to relocate?</legend>
    <input type="radio" name="relocate" value="yes"><label>Yes</label>
    <input type="radio" name="relocate" value="no"><label>No</label>
  </fieldset>
  <input type="text" name="city">
</form></body></html>`

	controls := discover(t, multiGroupForm)
	require.Len(t, controls, 5)

	names := make([]string, len(controls))
	for i, c := range controls {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"first_name", "sponsorship", "email", "relocate", "city"}, names)
}

func TestDiscover_LabelCandidates(t *testing.T) {
	controls := discover(t, fixtureForm)

	fn := findByName(controls, "first_name")
	require.NotNil(t, fn)
	assert.True(t, fn.Required)

	var sources []string
	for _, c := range fn.Candidates {
		sources = append(sources, c.Source)
	}
	assert.Contains(t, sources, SourceLabelFor)
	assert.Contains(t, sources, SourceName)

	phone := findByName(controls, "phone")
	require.NotNil(t, phone)
	found := false
	for _, c := range phone.Candidates {
		if c.Source == SourceSibling && c.Text == "Phone Number" {
			found = true
		}
	}
	assert.True(t, found, "sibling scan should pick up the preceding div text")
}

func TestDiscover_RadioGroupLegendCandidate(t *testing.T) {
	controls := discover(t, fixtureForm)

	group := findByName(controls, "work_auth")
	require.NotNil(t, group)
	found := false
	for _, c := range group.Candidates {
		if c.Source == SourceLegend {
			assert.Contains(t, c.Text, "authorized to work")
			found = true
		}
	}
	assert.True(t, found)
}

func TestDiscover_SelectSeedsPlaceholderValue(t *testing.T) {
	controls := discover(t, fixtureForm)

	country := findByName(controls, "country")
	require.NotNil(t, country)
	assert.Equal(t, "", country.Value)
	require.Len(t, country.Options, 3)
}

func TestStaticRef_SetValueAndReadBack(t *testing.T) {
	p, err := NewStaticProvider(fixtureForm, "")
	require.NoError(t, err)
	controls, err := p.Discover(context.Background())
	require.NoError(t, err)

	fn := findByName(controls, "first_name")
	require.NoError(t, fn.Ref.SetValue(context.Background(), "Ada"))

	st, err := fn.Ref.ReadState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", st.Value)
}

func TestStaticRef_SelectOptionRejectsUnknownValue(t *testing.T) {
	p, err := NewStaticProvider(fixtureForm, "")
	require.NoError(t, err)
	controls, err := p.Discover(context.Background())
	require.NoError(t, err)

	country := findByName(controls, "country")
	err = country.Ref.SelectOption(context.Background(), "narnia")
	assert.Error(t, err)

	st, _ := country.Ref.ReadState(context.Background())
	assert.Equal(t, "", st.Value, "failed selection must not change state")
}

func TestStaticRef_RadioGroupSelect(t *testing.T) {
	p, err := NewStaticProvider(fixtureForm, "")
	require.NoError(t, err)
	controls, err := p.Discover(context.Background())
	require.NoError(t, err)

	group := findByName(controls, "work_auth")
	require.NoError(t, group.Ref.SelectOption(context.Background(), "yes"))

	st, err := group.Ref.ReadState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "yes", st.Value)
	assert.True(t, st.Checked)
}

func TestStaticProvider_OnMutateSimulatesRevert(t *testing.T) {
	p, err := NewStaticProvider(fixtureForm, "")
	require.NoError(t, err)
	p.OnMutate = func(key string, st State) State {
		return State{} // page logic wipes every write
	}
	controls, err := p.Discover(context.Background())
	require.NoError(t, err)

	fn := findByName(controls, "first_name")
	require.NoError(t, fn.Ref.SetValue(context.Background(), "Ada"))

	st, _ := fn.Ref.ReadState(context.Background())
	assert.Equal(t, "", st.Value)
}

func TestStaticProvider_ReloadDropsState(t *testing.T) {
	p, err := NewStaticProvider(fixtureForm, "")
	require.NoError(t, err)
	controls, err := p.Discover(context.Background())
	require.NoError(t, err)
	require.NoError(t, findByName(controls, "first_name").Ref.SetValue(context.Background(), "Ada"))

	require.NoError(t, p.Reload(fixtureForm))
	controls, err = p.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", findByName(controls, "first_name").Value)
}

func TestDetectPlatform(t *testing.T) {
	assert.Equal(t, PlatformGreenhouse, DetectPlatform("https://boards.greenhouse.io/acme/jobs/1"))
	assert.Equal(t, PlatformLever, DetectPlatform("https://jobs.lever.co/acme/uuid"))
	assert.Equal(t, PlatformWorkday, DetectPlatform("https://acme.wd5.myworkdayjobs.com/en-US/ext"))
	assert.Equal(t, PlatformAshby, DetectPlatform("https://jobs.ashbyhq.com/acme/role"))
	assert.Equal(t, PlatformUnknown, DetectPlatform("https://example.com/careers"))
	assert.Equal(t, PlatformUnknown, DetectPlatform("::notaurl"))
}
