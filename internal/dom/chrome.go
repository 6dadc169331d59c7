package dom

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jonathan/form-agent/internal/textnorm"
)

// refAttr marks discovered elements so later interactions can target them
// even when the page lacks stable ids.
const refAttr = "data-form-agent-ref"

// ChromeProvider implements Provider against a headless browser tab.
// Requires Chrome/Chromium to be installed on the system.
type ChromeProvider struct {
	ctx      context.Context
	cancel   []context.CancelFunc
	location string
}

// NewChromeProvider starts a headless browser, navigates to url, and waits
// for the body to be ready.
func NewChromeProvider(ctx context.Context, url string, timeout time.Duration) (*ChromeProvider, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)

	p := &ChromeProvider{
		ctx:      browserCtx,
		cancel:   []context.CancelFunc{cancelTimeout, cancelBrowser, cancelAlloc},
		location: url,
	}

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	); err != nil {
		p.Close()
		return nil, &Error{Op: "navigate", Cause: err}
	}
	return p, nil
}

// Close tears down the browser contexts.
func (p *ChromeProvider) Close() {
	for _, cancel := range p.cancel {
		cancel()
	}
}

// Location returns the navigated URL.
func (p *ChromeProvider) Location() string {
	return p.location
}

// HTML returns the rendered document.
func (p *ChromeProvider) HTML(ctx context.Context) (string, error) {
	var html string
	if err := chromedp.Run(p.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", &Error{Op: "html", Cause: err}
	}
	return html, nil
}

// Settle sleeps inside the browser context, giving page scripts time to
// absorb an interaction.
func (p *ChromeProvider) Settle(_ context.Context, d time.Duration) error {
	return chromedp.Run(p.ctx, chromedp.Sleep(d))
}

// chromeSnapshot is the per-element payload produced by the discovery script.
type chromeSnapshot struct {
	Ref          int      `json:"ref"`
	Tag          string   `json:"tag"`
	Type         string   `json:"type"`
	Role         string   `json:"role"`
	Name         string   `json:"name"`
	ID           string   `json:"id"`
	Required     bool     `json:"required"`
	Value        string   `json:"value"`
	Checked      bool     `json:"checked"`
	Autocomplete string   `json:"autocomplete"`
	Placeholder  string   `json:"placeholder"`
	Title        string   `json:"title"`
	AriaLabel    string   `json:"ariaLabel"`
	LabelText    string   `json:"labelText"`
	LegendText   string   `json:"legendText"`
	SiblingText  string   `json:"siblingText"`
	OptionValues []string `json:"optionValues"`
	OptionTexts  []string `json:"optionTexts"`
}

// discoverScript enumerates visible enabled controls, tags each with a ref
// attribute, and returns JSON snapshots. Label-ish text is gathered here
// because only the browser knows computed visibility.
const discoverScript = `(() => {
  const visible = el => {
    const cs = getComputedStyle(el);
    return cs.display !== 'none' && cs.visibility !== 'hidden' && el.offsetParent !== null || el.tagName === 'BODY';
  };
  const labelFor = el => {
    if (el.id) {
      const l = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
      if (l) return l.innerText;
    }
    const p = el.closest('label');
    return p ? p.innerText : '';
  };
  const legendFor = el => {
    const fs = el.closest('fieldset');
    if (!fs) return '';
    const lg = fs.querySelector('legend');
    return lg ? lg.innerText : '';
  };
  const siblingFor = el => {
    let prev = el.previousElementSibling, n = 0;
    while (prev && n < 3) {
      if (!/^(INPUT|SELECT|TEXTAREA|BUTTON)$/.test(prev.tagName)) {
        const t = (prev.innerText || '').trim();
        if (t && t.length <= 160) return t;
      }
      prev = prev.previousElementSibling; n++;
    }
    return '';
  };
  const out = [];
  let ref = 0;
  document.querySelectorAll('input, textarea, select, [role=combobox], [role=switch]').forEach(el => {
    const type = (el.type || '').toLowerCase();
    if (['hidden','submit','button','reset','image'].includes(type)) return;
    if (el.disabled || !visible(el)) return;
    el.setAttribute('%s', String(ref));
    const snap = {
      ref: ref++,
      tag: el.tagName.toLowerCase(),
      type: type,
      role: el.getAttribute('role') || '',
      name: el.name || '',
      id: el.id || '',
      required: !!el.required || el.getAttribute('aria-required') === 'true',
      value: el.value || '',
      checked: !!el.checked || el.getAttribute('aria-checked') === 'true',
      autocomplete: el.getAttribute('autocomplete') || '',
      placeholder: el.getAttribute('placeholder') || '',
      title: el.getAttribute('title') || '',
      ariaLabel: el.getAttribute('aria-label') || '',
      labelText: labelFor(el),
      legendText: legendFor(el),
      siblingText: siblingFor(el),
      optionValues: [],
      optionTexts: []
    };
    if (el.tagName === 'SELECT') {
      for (const o of el.options) { snap.optionValues.push(o.value); snap.optionTexts.push(o.text); }
    }
    out.push(snap);
  });
  return JSON.stringify(out);
})()`

// Discover snapshots the page's controls and folds radio groups.
func (p *ChromeProvider) Discover(_ context.Context) ([]*Control, error) {
	var raw string
	script := fmt.Sprintf(discoverScript, refAttr)
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(script, &raw)); err != nil {
		return nil, &Error{Op: "discover", Cause: err}
	}

	var snaps []chromeSnapshot
	if err := json.Unmarshal([]byte(raw), &snaps); err != nil {
		return nil, &Error{Op: "discover", Cause: err}
	}

	var controls []*Control
	radioGroups := make(map[string]*Control)

	for _, snap := range snaps {
		if snap.Tag == "input" && snap.Type == "radio" {
			p.foldRadioSnapshot(snap, radioGroups, &controls)
			continue
		}
		kind := chromeKind(snap)
		if kind == "" {
			continue
		}
		ctl := &Control{
			Kind:       kind,
			Name:       snap.Name,
			ID:         snap.ID,
			Required:   snap.Required,
			Value:      snap.Value,
			Checked:    snap.Checked,
			Candidates: snapshotCandidates(snap),
			Hints: AttrHints{
				InputType:    snap.Type,
				Autocomplete: snap.Autocomplete,
				Placeholder:  snap.Placeholder,
			},
			Ref: &chromeRef{p: p, refs: []int{snap.Ref}, kind: kind},
		}
		for i := range snap.OptionValues {
			ctl.Options = append(ctl.Options, Option{Value: snap.OptionValues[i], Text: snap.OptionTexts[i]})
		}
		controls = append(controls, ctl)
	}
	return controls, nil
}

func (p *ChromeProvider) foldRadioSnapshot(snap chromeSnapshot, groups map[string]*Control, controls *[]*Control) {
	if snap.Name == "" {
		return
	}
	group, ok := groups[snap.Name]
	if !ok {
		group = &Control{
			Kind:     KindRadioGroup,
			Name:     snap.Name,
			Required: snap.Required,
			Ref:      &chromeRef{p: p, kind: KindRadioGroup},
		}
		if snap.LegendText != "" {
			group.Candidates = appendCandidate(group.Candidates, SourceLegend, snap.LegendText)
		}
		if snap.SiblingText != "" {
			group.Candidates = appendCandidate(group.Candidates, SourceSibling, snap.SiblingText)
		}
		group.Candidates = appendCandidate(group.Candidates, SourceName, textnorm.SplitIdentifier(snap.Name))
		groups[snap.Name] = group
		*controls = append(*controls, group)
	}
	memberLabel := snap.LabelText
	if memberLabel == "" {
		memberLabel = snap.Value
	}
	group.Options = append(group.Options, Option{Value: snap.Value, Text: memberLabel})
	ref := group.Ref.(*chromeRef)
	ref.refs = append(ref.refs, snap.Ref)
	ref.optionValues = append(ref.optionValues, snap.Value)
	if snap.Checked {
		group.Value = snap.Value
		group.Checked = true
	}
}

func chromeKind(snap chromeSnapshot) Kind {
	switch snap.Tag {
	case "textarea":
		return KindTextarea
	case "select":
		return KindSelect
	case "input":
		switch snap.Type {
		case "checkbox":
			return KindCheckbox
		case "file":
			return KindFile
		case "", "text", "email", "tel", "url", "number", "date", "search":
			return KindText
		}
		return ""
	}
	switch snap.Role {
	case "combobox":
		return KindDropdown
	case "switch":
		return KindToggle
	}
	return ""
}

func snapshotCandidates(snap chromeSnapshot) []LabelCandidate {
	var cands []LabelCandidate
	if snap.LabelText != "" {
		cands = appendCandidate(cands, SourceLabelFor, snap.LabelText)
	}
	if snap.LegendText != "" {
		cands = appendCandidate(cands, SourceLegend, snap.LegendText)
	}
	if snap.AriaLabel != "" {
		cands = appendCandidate(cands, SourceAria, snap.AriaLabel)
	}
	if snap.Placeholder != "" {
		cands = appendCandidate(cands, SourcePlaceholder, snap.Placeholder)
	}
	if snap.Title != "" {
		cands = appendCandidate(cands, SourceTitle, snap.Title)
	}
	if snap.SiblingText != "" {
		cands = appendCandidate(cands, SourceSibling, snap.SiblingText)
	}
	if snap.Name != "" {
		cands = appendCandidate(cands, SourceName, textnorm.SplitIdentifier(snap.Name))
	}
	if snap.ID != "" {
		cands = appendCandidate(cands, SourceID, textnorm.SplitIdentifier(snap.ID))
	}
	return cands
}

// chromeRef drives one element (or radio group) through injected JS so the
// page sees the same input/change events a user interaction produces.
type chromeRef struct {
	p            *ChromeProvider
	kind         Kind
	refs         []int
	optionValues []string
}

func (r *chromeRef) selector(i int) string {
	return fmt.Sprintf("[%s='%d']", refAttr, r.refs[i])
}

func (r *chromeRef) ReadState(_ context.Context) (State, error) {
	if len(r.refs) == 0 {
		return State{}, &Error{Op: "read-state", Cause: fmt.Errorf("stale ref")}
	}
	script := fmt.Sprintf(`(() => {
  const els = document.querySelectorAll("[%s]");
  for (const el of els) {
    const ref = Number(el.getAttribute('%s'));
    if (![%s].includes(ref)) continue;
    if (el.type === 'radio' || el.type === 'checkbox') {
      if (el.checked) return JSON.stringify({value: el.value || '', checked: true});
      continue;
    }
    return JSON.stringify({value: el.value || '', checked: false});
  }
  return JSON.stringify({value: '', checked: false});
})()`, refAttr, refAttr, joinInts(r.refs))

	var raw string
	if err := chromedp.Run(r.p.ctx, chromedp.Evaluate(script, &raw)); err != nil {
		return State{}, &Error{Op: "read-state", Cause: err}
	}
	var st struct {
		Value   string `json:"value"`
		Checked bool   `json:"checked"`
	}
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, &Error{Op: "read-state", Cause: err}
	}
	return State{Value: st.Value, Checked: st.Checked}, nil
}

func (r *chromeRef) SetValue(_ context.Context, value string) error {
	if len(r.refs) == 0 {
		return &Error{Op: "set-value", Cause: fmt.Errorf("stale ref")}
	}
	encoded, _ := json.Marshal(value)
	script := fmt.Sprintf(`(() => {
  const el = document.querySelector("%s");
  if (!el) return false;
  el.focus();
  el.value = %s;
  el.dispatchEvent(new Event('input', {bubbles: true}));
  el.dispatchEvent(new Event('change', {bubbles: true}));
  el.blur();
  return true;
})()`, r.selector(0), encoded)
	var ok bool
	if err := chromedp.Run(r.p.ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return &Error{Op: "set-value", Cause: err}
	}
	if !ok {
		return &Error{Op: "set-value", Cause: fmt.Errorf("element not found")}
	}
	return nil
}

func (r *chromeRef) SelectOption(_ context.Context, optionValue string) error {
	if r.kind == KindRadioGroup {
		for i, v := range r.optionValues {
			if v == optionValue {
				return chromedp.Run(r.p.ctx, chromedp.Click(r.selector(i), chromedp.NodeVisible))
			}
		}
		return &Error{Op: "select-option", Cause: fmt.Errorf("no radio with value %q", optionValue)}
	}
	encoded, _ := json.Marshal(optionValue)
	script := fmt.Sprintf(`(() => {
  const el = document.querySelector("%s");
  if (!el) return false;
  el.value = %s;
  el.dispatchEvent(new Event('input', {bubbles: true}));
  el.dispatchEvent(new Event('change', {bubbles: true}));
  return el.value === %s;
})()`, r.selector(0), encoded, encoded)
	var ok bool
	if err := chromedp.Run(r.p.ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return &Error{Op: "select-option", Cause: err}
	}
	if !ok {
		return &Error{Op: "select-option", Cause: fmt.Errorf("option %q not applied", optionValue)}
	}
	return nil
}

func (r *chromeRef) SetChecked(_ context.Context, checked bool) error {
	if len(r.refs) == 0 {
		return &Error{Op: "set-checked", Cause: fmt.Errorf("stale ref")}
	}
	script := fmt.Sprintf(`(() => {
  const el = document.querySelector("%s");
  if (!el) return false;
  if (!!el.checked !== %t) el.click();
  return true;
})()`, r.selector(0), checked)
	var ok bool
	if err := chromedp.Run(r.p.ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return &Error{Op: "set-checked", Cause: err}
	}
	if !ok {
		return &Error{Op: "set-checked", Cause: fmt.Errorf("element not found")}
	}
	return nil
}

func (r *chromeRef) Upload(_ context.Context, path string) error {
	if len(r.refs) == 0 {
		return &Error{Op: "upload", Cause: fmt.Errorf("stale ref")}
	}
	return chromedp.Run(r.p.ctx, chromedp.SetUploadFiles(r.selector(0), []string{path}))
}

func joinInts(vals []int) string {
	out := ""
	for i, v := range vals {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprint(v)
	}
	return out
}
