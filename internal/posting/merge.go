package posting

import (
	"strings"

	"github.com/jonathan/form-agent/internal/textnorm"
)

// minDedupLength exempts short lines (headings, bullet fragments) from
// duplicate suppression: "Requirements" appearing twice is structure, a
// repeated 200-char paragraph is a duplicate source.
const minDedupLength = 25

// minTrimOffset keeps an end marker from truncating the description when a
// vendor places "Apply now" above the posting body.
const minTrimOffset = 200

// startMarkers announce the beginning of posting prose.
var startMarkers = []string{
	"job description",
	"the opportunity",
	"about the role",
	"about this role",
	"about the job",
	"position summary",
}

// endMarkers announce trailing site chrome.
var endMarkers = []string{
	"similar jobs",
	"related jobs",
	"apply now",
	"apply for this job",
	"share this job",
	"other openings",
	"you may also like",
}

// mergeSources concatenates the gathered texts paragraph by paragraph,
// suppressing duplicates by normalized key. Source order expresses trust:
// earlier sources claim a paragraph first.
func mergeSources(sources ...string) string {
	seen := make(map[string]struct{})
	var out []string

	for _, src := range sources {
		for _, line := range strings.Split(src, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			key := textnorm.Normalize(line)
			if len(key) >= minDedupLength {
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
			}
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// trimChrome cuts the text down to the span between the earliest start
// marker and the nearest end marker past the minimum offset.
func trimChrome(text string) string {
	lower := strings.ToLower(text)

	start := -1
	for _, marker := range startMarkers {
		if idx := strings.Index(lower, marker); idx >= 0 && (start < 0 || idx < start) {
			start = idx
		}
	}
	if start < 0 {
		start = 0
	}

	end := len(text)
	for _, marker := range endMarkers {
		if idx := strings.Index(lower[start:], marker); idx >= 0 {
			abs := start + idx
			if abs >= start+minTrimOffset && abs < end {
				end = abs
			}
		}
	}

	return strings.TrimSpace(text[start:end])
}
