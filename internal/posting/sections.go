package posting

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxHeadingLength bounds how long a line can be and still read as a
// section heading rather than prose.
const maxHeadingLength = 64

// sectionHeadings maps section names to the heading phrasings vendors use.
// Phrasings are regex-escaped at build time; order within a set is
// irrelevant because matching is anchored per line.
var sectionHeadings = []struct {
	name     string
	phrases  []string
	compiled *regexp.Regexp
}{
	{name: "responsibilities", phrases: []string{
		"responsibilities", "what you'll do", "what you will do", "your role",
		"duties", "day to day", "in this role",
	}},
	{name: "requirements", phrases: []string{
		"requirements", "qualifications", "what you'll need", "what you will need",
		"what we're looking for", "who you are", "must have", "minimum qualifications",
	}},
	{name: "preferred", phrases: []string{
		"preferred qualifications", "nice to have", "nice-to-have", "bonus points",
		"preferred skills", "it's a plus",
	}},
	{name: "benefits", phrases: []string{
		"benefits", "perks", "what we offer", "compensation and benefits", "why join us",
	}},
}

func init() {
	for i := range sectionHeadings {
		escaped := make([]string, len(sectionHeadings[i].phrases))
		for j, p := range sectionHeadings[i].phrases {
			escaped[j] = regexp.QuoteMeta(p)
		}
		sectionHeadings[i].compiled = regexp.MustCompile(`(?i)^[^\p{L}\p{N}]*(?:` + strings.Join(escaped, "|") + `)\b`)
	}
}

// sections is the heading-anchored breakdown of a description.
type sections struct {
	Summary          string
	Responsibilities []string
	Requirements     []string
	Preferred        []string
	Benefits         []string
}

// splitSections segments the description line by line. Text before the
// first recognized heading is the summary; later headings switch the
// current sink. Specific heading sets are consulted before generic ones
// ("preferred qualifications" must not land in "requirements").
func splitSections(text string) sections {
	var out sections
	var summary []string
	var current *[]string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if name, ok := headingName(line); ok {
			switch name {
			case "responsibilities":
				current = &out.Responsibilities
			case "requirements":
				current = &out.Requirements
			case "preferred":
				current = &out.Preferred
			case "benefits":
				current = &out.Benefits
			}
			continue
		}

		item := strings.TrimSpace(strings.TrimLeft(line, "-•*· "))
		if item == "" {
			continue
		}
		if current != nil {
			*current = append(*current, item)
		} else {
			summary = append(summary, item)
		}
	}

	out.Summary = strings.Join(summary, " ")
	return out
}

// headingName recognizes a section heading line. "Preferred" sets are
// checked before "requirements" because their phrasings overlap.
func headingName(line string) (string, bool) {
	if len(line) > maxHeadingLength {
		return "", false
	}
	// Preferred first: "preferred qualifications" also matches the
	// requirements set.
	order := []int{2, 0, 1, 3}
	for _, i := range order {
		if sectionHeadings[i].compiled.MatchString(line) {
			return sectionHeadings[i].name, true
		}
	}
	return "", false
}

// skillCanon maps lowercase skill tokens found in posting text to their
// canonical display names.
var skillCanon = map[string]string{
	"go":            "Go",
	"golang":        "Go",
	"python":        "Python",
	"java":          "Java",
	"javascript":    "JavaScript",
	"typescript":    "TypeScript",
	"rust":          "Rust",
	"c\\+\\+":       "C++",
	"ruby":          "Ruby",
	"kotlin":        "Kotlin",
	"swift":         "Swift",
	"react":         "React",
	"vue":           "Vue",
	"node\\.js":     "Node.js",
	"kubernetes":    "Kubernetes",
	"k8s":           "Kubernetes",
	"docker":        "Docker",
	"terraform":     "Terraform",
	"aws":           "AWS",
	"gcp":           "GCP",
	"azure":         "Azure",
	"sql":           "SQL",
	"postgresql":    "PostgreSQL",
	"postgres":      "PostgreSQL",
	"mysql":         "MySQL",
	"redis":         "Redis",
	"kafka":         "Kafka",
	"grpc":          "gRPC",
	"graphql":       "GraphQL",
	"linux":         "Linux",
	"git":           "Git",
	"ci/cd":         "CI/CD",
	"machine learning": "Machine Learning",
}

var skillRes = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(skillCanon))
	for token := range skillCanon {
		out[token] = regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}])` + token + `($|[^\p{L}\p{N}+])`)
	}
	// The bare word "go" is everyday prose; only the capitalized language
	// name counts.
	out["go"] = regexp.MustCompile(`(^|[^\p{L}\p{N}])Go($|[^\p{L}\p{N}+])`)
	return out
}()

// deriveSkills scans the description for known skill tokens and returns
// their canonical names, sorted and deduplicated.
func deriveSkills(text string) []string {
	found := make(map[string]struct{})
	for token, re := range skillRes {
		if re.MatchString(text) {
			found[skillCanon[token]] = struct{}{}
		}
	}
	out := make([]string, 0, len(found))
	for name := range found {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var yearsRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,2})\s*\+?\s*(?:-\s*\d{1,2}\s*)?years?[^.\n]{0,50}experience`),
	regexp.MustCompile(`(?i)experience[^.\n]{0,50}?(\d{1,2})\s*\+?\s*years?`),
	regexp.MustCompile(`(?i)minimum\s+of\s+(\d{1,2})\s*years?`),
}

// yearsRequired estimates the experience requirement from phrases like
// "5+ years of experience". The maximum across all mentions wins.
func yearsRequired(text string) int {
	best := 0
	for _, re := range yearsRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n > best && n <= 30 {
				best = n
			}
		}
	}
	return best
}
