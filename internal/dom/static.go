package dom

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/form-agent/internal/textnorm"
)

// maxSiblingScan bounds the backward sibling walk during label gathering.
const maxSiblingScan = 3

// maxCandidateLength rejects sibling/ancestor text that is clearly a
// paragraph rather than a label.
const maxCandidateLength = 160

// StaticProvider implements Provider over a parsed HTML document with
// in-memory mutable control state. It backs tests and offline analysis;
// the chrome provider drives a real browser with the same contract.
type StaticProvider struct {
	doc      *goquery.Document
	html     string
	location string
	state    map[string]State

	// OnMutate, when set, post-processes every state change. Tests use it
	// to simulate document logic that rewrites or reverts values after an
	// apparently successful interaction.
	OnMutate func(key string, st State) State
}

// NewStaticProvider parses html and returns a provider rooted at location.
func NewStaticProvider(html, location string) (*StaticProvider, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{Op: "parse", Cause: err}
	}
	return &StaticProvider{
		doc:      doc,
		html:     html,
		location: location,
		state:    make(map[string]State),
	}, nil
}

// Reload replaces the document, dropping all prior state. Simulates a
// repaint between passes.
func (p *StaticProvider) Reload(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &Error{Op: "reload", Cause: err}
	}
	p.doc = doc
	p.html = html
	p.state = make(map[string]State)
	return nil
}

// Location returns the document URL the provider was rooted at.
func (p *StaticProvider) Location() string {
	return p.location
}

// HTML returns the source document.
func (p *StaticProvider) HTML(_ context.Context) (string, error) {
	return p.html, nil
}

// Settle is a no-op: the static document has no asynchronous behavior.
func (p *StaticProvider) Settle(_ context.Context, _ time.Duration) error {
	return nil
}

// Discover enumerates visible, enabled controls in document order, folding
// same-name radios into group descriptors.
func (p *StaticProvider) Discover(_ context.Context) ([]*Control, error) {
	var controls []*Control
	radioGroups := make(map[string]*Control)
	radioOrder := make(map[string]int)

	p.doc.Find("input, textarea, select, [role='combobox'], [role='switch']").Each(func(i int, s *goquery.Selection) {
		if !p.interactable(s) {
			return
		}

		tag := goquery.NodeName(s)
		inputType := strings.ToLower(s.AttrOr("type", ""))
		name := s.AttrOr("name", "")
		id := s.AttrOr("id", "")

		if tag == "input" && inputType == "radio" {
			p.foldRadio(s, name, radioGroups, radioOrder, len(controls))
			return
		}

		kind := kindOf(tag, inputType, s)
		if kind == "" {
			return
		}

		key := p.controlKey(kind, name, id, i)
		ctl := &Control{
			Kind:       kind,
			Name:       name,
			ID:         id,
			Required:   hasAttr(s, "required") || s.AttrOr("aria-required", "") == "true",
			Candidates: p.labelCandidates(s, name, id),
			Hints: AttrHints{
				InputType:    inputType,
				Autocomplete: s.AttrOr("autocomplete", ""),
				Placeholder:  s.AttrOr("placeholder", ""),
			},
		}

		if kind.Enumerable() {
			ctl.Options = selectOptions(s)
		}
		p.seedState(key, s, ctl)
		ctl.Ref = &staticRef{p: p, key: key, kind: kind, options: ctl.Options}
		controls = append(controls, ctl)
	})

	// Splice radio groups back in at the position of their first member,
	// earliest group first so later insert positions account for the shift.
	names := make([]string, 0, len(radioGroups))
	for name := range radioGroups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return radioOrder[names[i]] < radioOrder[names[j]] })
	for spliced, name := range names {
		group := radioGroups[name]
		st := p.state["radio:"+name]
		group.Value = st.Value
		group.Checked = st.Checked
		group.Ref = &staticRef{p: p, key: "radio:" + name, kind: KindRadioGroup, options: group.Options}
		pos := radioOrder[name] + spliced
		if pos >= len(controls) {
			controls = append(controls, group)
		} else {
			controls = append(controls[:pos], append([]*Control{group}, controls[pos:]...)...)
		}
	}

	return controls, nil
}

// interactable filters out hidden, disabled, and non-fillable elements.
func (p *StaticProvider) interactable(s *goquery.Selection) bool {
	inputType := strings.ToLower(s.AttrOr("type", ""))
	switch inputType {
	case "hidden", "submit", "button", "reset", "image":
		return false
	}
	if hasAttr(s, "disabled") || hasAttr(s, "hidden") {
		return false
	}
	if s.Closest("[hidden]").Length() > 0 {
		return false
	}
	style := s.Closest("[style]").AttrOr("style", "")
	if strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none") {
		return false
	}
	return true
}

func (p *StaticProvider) foldRadio(s *goquery.Selection, name string, groups map[string]*Control, order map[string]int, pos int) {
	if name == "" {
		return
	}
	group, ok := groups[name]
	if !ok {
		group = &Control{
			Kind:       KindRadioGroup,
			Name:       name,
			Required:   hasAttr(s, "required"),
			Candidates: p.radioGroupCandidates(s, name),
		}
		groups[name] = group
		order[name] = pos
	}
	value := s.AttrOr("value", "")
	group.Options = append(group.Options, Option{Value: value, Text: p.memberLabel(s)})
	if hasAttr(s, "checked") {
		p.state["radio:"+name] = State{Value: value, Checked: true}
	} else if _, seeded := p.state["radio:"+name]; !seeded {
		p.state["radio:"+name] = State{}
	}
}

// radioGroupCandidates gathers group-level labels: the enclosing legend,
// a group-level aria label, and the split name attribute.
func (p *StaticProvider) radioGroupCandidates(s *goquery.Selection, name string) []LabelCandidate {
	var cands []LabelCandidate
	if legend := s.Closest("fieldset").Find("legend").First(); legend.Length() > 0 {
		cands = appendCandidate(cands, SourceLegend, legend.Text())
	}
	if aria := s.Closest("[role='radiogroup']").AttrOr("aria-label", ""); aria != "" {
		cands = appendCandidate(cands, SourceAria, aria)
	}
	cands = p.appendSiblingCandidates(cands, s.Closest("fieldset, [role='radiogroup']"))
	cands = appendCandidate(cands, SourceName, textnorm.SplitIdentifier(name))
	return cands
}

// memberLabel resolves the human text of one radio member.
func (p *StaticProvider) memberLabel(s *goquery.Selection) string {
	if id := s.AttrOr("id", ""); id != "" {
		if lbl := p.doc.Find(fmt.Sprintf("label[for='%s']", id)); lbl.Length() > 0 {
			return textnorm.CollapseWhitespace(lbl.Text())
		}
	}
	if parent := s.Closest("label"); parent.Length() > 0 {
		return textnorm.CollapseWhitespace(parent.Text())
	}
	return s.AttrOr("value", "")
}

// labelCandidates collects the weak label sources for a single control.
func (p *StaticProvider) labelCandidates(s *goquery.Selection, name, id string) []LabelCandidate {
	var cands []LabelCandidate

	if id != "" {
		if lbl := p.doc.Find(fmt.Sprintf("label[for='%s']", id)); lbl.Length() > 0 {
			cands = appendCandidate(cands, SourceLabelFor, lbl.First().Text())
		}
	}
	if parent := s.Closest("label"); parent.Length() > 0 {
		clone := parent.Clone()
		clone.Find("input, select, textarea").Remove()
		cands = appendCandidate(cands, SourceAncestor, clone.Text())
	}
	if legend := s.Closest("fieldset").Find("legend").First(); legend.Length() > 0 {
		cands = appendCandidate(cands, SourceLegend, legend.Text())
	}
	if aria := s.AttrOr("aria-label", ""); aria != "" {
		cands = appendCandidate(cands, SourceAria, aria)
	}
	if labelledBy := s.AttrOr("aria-labelledby", ""); labelledBy != "" {
		for _, refID := range strings.Fields(labelledBy) {
			if el := p.doc.Find("#" + refID); el.Length() > 0 {
				cands = appendCandidate(cands, SourceAria, el.Text())
			}
		}
	}
	if ph := s.AttrOr("placeholder", ""); ph != "" {
		cands = appendCandidate(cands, SourcePlaceholder, ph)
	}
	if title := s.AttrOr("title", ""); title != "" {
		cands = appendCandidate(cands, SourceTitle, title)
	}
	cands = p.appendSiblingCandidates(cands, s)
	if name != "" {
		cands = appendCandidate(cands, SourceName, textnorm.SplitIdentifier(name))
	}
	if id != "" {
		cands = appendCandidate(cands, SourceID, textnorm.SplitIdentifier(id))
	}
	return cands
}

// appendSiblingCandidates performs the limited backward sibling scan.
func (p *StaticProvider) appendSiblingCandidates(cands []LabelCandidate, s *goquery.Selection) []LabelCandidate {
	if s.Length() == 0 {
		return cands
	}
	prev := s.Prev()
	for i := 0; i < maxSiblingScan && prev.Length() > 0; i++ {
		tag := goquery.NodeName(prev)
		if tag != "input" && tag != "select" && tag != "textarea" && tag != "button" {
			if text := textnorm.CollapseWhitespace(prev.Text()); text != "" && len(text) <= maxCandidateLength {
				cands = appendCandidate(cands, SourceSibling, text)
				break
			}
		}
		prev = prev.Prev()
	}
	return cands
}

func appendCandidate(cands []LabelCandidate, source, text string) []LabelCandidate {
	text = textnorm.CollapseWhitespace(text)
	if text == "" || len(text) > maxCandidateLength*3 {
		return cands
	}
	return append(cands, LabelCandidate{Source: source, Text: text})
}

func (p *StaticProvider) controlKey(kind Kind, name, id string, idx int) string {
	if id != "" {
		return "id:" + id
	}
	if name != "" {
		return fmt.Sprintf("name:%s:%s", name, kind)
	}
	return fmt.Sprintf("idx:%d", idx)
}

// seedState initializes the mutable state from document attributes the
// first time a control is seen, mirroring browser defaults for selects.
func (p *StaticProvider) seedState(key string, s *goquery.Selection, ctl *Control) {
	if st, ok := p.state[key]; ok {
		ctl.Value = st.Value
		ctl.Checked = st.Checked
		return
	}

	var st State
	switch ctl.Kind {
	case KindTextarea:
		st.Value = strings.TrimSpace(s.Text())
		if v, ok := s.Attr("value"); ok {
			st.Value = v
		}
	case KindSelect, KindDropdown:
		if sel := s.Find("option[selected]"); sel.Length() > 0 {
			st.Value = sel.AttrOr("value", textnorm.CollapseWhitespace(sel.Text()))
		} else if first := s.Find("option").First(); first.Length() > 0 {
			st.Value = first.AttrOr("value", "")
		}
	case KindCheckbox, KindToggle:
		st.Checked = hasAttr(s, "checked") || s.AttrOr("aria-checked", "") == "true"
	default:
		st.Value = s.AttrOr("value", "")
	}
	p.state[key] = st
	ctl.Value = st.Value
	ctl.Checked = st.Checked
}

func (p *StaticProvider) mutate(key string, st State) {
	if p.OnMutate != nil {
		st = p.OnMutate(key, st)
	}
	p.state[key] = st
}

func kindOf(tag, inputType string, s *goquery.Selection) Kind {
	switch tag {
	case "textarea":
		return KindTextarea
	case "select":
		return KindSelect
	case "input":
		switch inputType {
		case "checkbox":
			return KindCheckbox
		case "file":
			return KindFile
		case "", "text", "email", "tel", "url", "number", "date", "search":
			return KindText
		}
		return ""
	}
	switch s.AttrOr("role", "") {
	case "combobox":
		return KindDropdown
	case "switch":
		return KindToggle
	}
	return ""
}

func selectOptions(s *goquery.Selection) []Option {
	var opts []Option
	s.Find("option, [role='option']").Each(func(_ int, o *goquery.Selection) {
		text := textnorm.CollapseWhitespace(o.Text())
		opts = append(opts, Option{
			Value: o.AttrOr("value", text),
			Text:  text,
		})
	})
	return opts
}

func hasAttr(s *goquery.Selection, name string) bool {
	_, ok := s.Attr(name)
	return ok
}

// staticRef is the in-memory interaction handle.
type staticRef struct {
	p       *StaticProvider
	key     string
	kind    Kind
	options []Option
}

func (r *staticRef) ReadState(_ context.Context) (State, error) {
	return r.p.state[r.key], nil
}

func (r *staticRef) SetValue(_ context.Context, value string) error {
	if r.kind != KindText && r.kind != KindTextarea {
		return &Error{Op: "set-value", Control: r.key, Cause: fmt.Errorf("kind %s does not accept direct values", r.kind)}
	}
	r.p.mutate(r.key, State{Value: value})
	return nil
}

func (r *staticRef) SelectOption(_ context.Context, optionValue string) error {
	if !r.kind.Enumerable() {
		return &Error{Op: "select-option", Control: r.key, Cause: fmt.Errorf("kind %s has no options", r.kind)}
	}
	for _, opt := range r.options {
		if opt.Value == optionValue {
			r.p.mutate(r.key, State{Value: optionValue, Checked: true})
			return nil
		}
	}
	return &Error{Op: "select-option", Control: r.key, Cause: fmt.Errorf("no option with value %q", optionValue)}
}

func (r *staticRef) SetChecked(_ context.Context, checked bool) error {
	if !r.kind.Boolean() {
		return &Error{Op: "set-checked", Control: r.key, Cause: fmt.Errorf("kind %s is not boolean", r.kind)}
	}
	r.p.mutate(r.key, State{Checked: checked})
	return nil
}

func (r *staticRef) Upload(_ context.Context, path string) error {
	if r.kind != KindFile {
		return &Error{Op: "upload", Control: r.key, Cause: fmt.Errorf("kind %s does not accept files", r.kind)}
	}
	r.p.mutate(r.key, State{Value: path})
	return nil
}
