package posting

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Single-page-app vendors ship the posting inside a serialized state blob
// instead of (or before) rendering it. These are the globals worth mining.
var stateMarkers = []string{
	"__NEXT_DATA__",
	"__INITIAL_STATE__",
	"__APP_DATA__",
	"__remixContext",
}

// descriptionKeyRe matches JSON keys that plausibly hold posting prose.
var descriptionKeyRe = regexp.MustCompile(`(?i)description|responsibilit|qualification|requirement|job_?details|about_?(the_?)?(role|job)`)

// minStateTextLength rejects short strings (button labels, toasts) that
// happen to live under a matching key.
const minStateTextLength = 200

// pageStateText mines embedded page-state payloads for the longest
// plausible posting text. Returns empty when nothing qualifies.
func pageStateText(doc *goquery.Document) string {
	best := ""

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		raw := s.Text()
		if strings.TrimSpace(raw) == "" {
			return
		}

		var payload interface{}
		if s.AttrOr("type", "") == "application/json" {
			if err := json.Unmarshal([]byte(raw), &payload); err != nil {
				return
			}
		} else {
			blob, ok := inlineStateBlob(raw)
			if !ok {
				return
			}
			if err := json.Unmarshal([]byte(blob), &payload); err != nil {
				return
			}
		}

		walkState(payload, "", &best)
	})

	return best
}

// inlineStateBlob pulls the JSON object out of an assignment like
// `window.__INITIAL_STATE__ = {...};`.
func inlineStateBlob(script string) (string, bool) {
	marked := false
	for _, marker := range stateMarkers {
		if strings.Contains(script, marker) {
			marked = true
			break
		}
	}
	if !marked {
		return "", false
	}

	start := strings.Index(script, "{")
	end := strings.LastIndex(script, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return script[start : end+1], true
}

// walkState depth-firsts the decoded payload, keeping the longest string
// stored under a description-like key. Array elements inherit their
// parent's key.
func walkState(v interface{}, key string, best *string) {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			walkState(child, k, best)
		}
	case []interface{}:
		for _, child := range t {
			walkState(child, key, best)
		}
	case string:
		if !descriptionKeyRe.MatchString(key) {
			return
		}
		text := stripMarkup(t)
		if len(text) >= minStateTextLength && len(text) > len(*best) {
			*best = text
		}
	}
}
