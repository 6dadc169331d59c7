package posting

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// metadata is the subset of structured job-posting markup the extractor
// consumes. Vendors emit it inconsistently: single objects, top-level
// arrays, or @graph collections, with fields that are sometimes strings and
// sometimes nested objects.
type metadata struct {
	Title          string
	Organization   string
	Location       string
	EmploymentType string
	Description    string
}

// findMetadata scans ld+json script blocks for a JobPosting object.
// Malformed blocks are skipped, never fatal.
func findMetadata(doc *goquery.Document) *metadata {
	var found *metadata
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload interface{}
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}
		if m := jobPostingFrom(payload); m != nil {
			found = m
			return false
		}
		return true
	})
	return found
}

// jobPostingFrom digs through the payload shapes vendors actually emit.
func jobPostingFrom(payload interface{}) *metadata {
	switch v := payload.(type) {
	case []interface{}:
		for _, item := range v {
			if m := jobPostingFrom(item); m != nil {
				return m
			}
		}
	case map[string]interface{}:
		if graph, ok := v["@graph"].([]interface{}); ok {
			if m := jobPostingFrom(graph); m != nil {
				return m
			}
		}
		if !hasType(v, "JobPosting") {
			return nil
		}
		return &metadata{
			Title:          stringField(v, "title"),
			Organization:   nestedName(v, "hiringOrganization"),
			Location:       locationField(v),
			EmploymentType: firstString(v["employmentType"]),
			Description:    stripMarkup(stringField(v, "description")),
		}
	}
	return nil
}

func hasType(m map[string]interface{}, want string) bool {
	switch t := m["@type"].(type) {
	case string:
		return t == want
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// firstString accepts a string or a list of strings and returns the first.
func firstString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func nestedName(m map[string]interface{}, key string) string {
	obj, ok := m[key].(map[string]interface{})
	if !ok {
		return firstString(m[key])
	}
	return stringField(obj, "name")
}

// locationField flattens jobLocation, which may be an object or an array of
// objects each carrying a postal address.
func locationField(m map[string]interface{}) string {
	loc := m["jobLocation"]
	if arr, ok := loc.([]interface{}); ok && len(arr) > 0 {
		loc = arr[0]
	}
	obj, ok := loc.(map[string]interface{})
	if !ok {
		return firstString(loc)
	}
	if addr, ok := obj["address"].(map[string]interface{}); ok {
		parts := make([]string, 0, 3)
		for _, key := range []string{"addressLocality", "addressRegion", "addressCountry"} {
			if v := firstString(addr[key]); v != "" {
				parts = append(parts, v)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	return stringField(obj, "name")
}

// stripMarkup flattens embedded HTML fragments (descriptions routinely
// arrive as escaped markup) into block-separated plain text.
func stripMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	frag, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return blockLines(frag.Selection)
}
