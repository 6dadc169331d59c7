package posting

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/jonathan/form-agent/internal/dom"
)

// minDescriptionLength is the confidence floor: below it the extractor
// returns nothing rather than a low-confidence guess.
const minDescriptionLength = 200

// Extract produces a posting record from raw document markup, or nil when
// no candidate source reaches the confidence threshold. The three sources
// (structured metadata, embedded page state, best visible subtree) are
// gathered independently and merged with duplicate suppression.
func Extract(html, sourceURL string) (*Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &ParseError{Message: "unparseable document", Cause: err}
	}

	platform := dom.DetectPlatform(sourceURL)

	meta := findMetadata(doc)
	stateText := pageStateText(doc)

	var metaDescription string
	if meta != nil {
		metaDescription = meta.Description
	}

	// Subtree scoring mutates the document (noise removal), so it runs
	// after the script-based sources.
	subtree := bestSubtree(doc, platform)

	description := trimChrome(mergeSources(metaDescription, subtree, stateText))
	if len(description) < minDescriptionLength {
		return nil, nil
	}

	split := splitSections(description)
	rec := &Record{
		ID:               uuid.NewString(),
		SchemaVersion:    SchemaVersion,
		Description:      description,
		Summary:          split.Summary,
		Responsibilities: split.Responsibilities,
		Requirements:     split.Requirements,
		Preferred:        split.Preferred,
		Benefits:         split.Benefits,
		Compensation:     compensationRange(description),
		Sponsorship:      sponsorshipStatus(description),
		Skills:           deriveSkills(description),
		YearsRequired:    yearsRequired(description),
		Provenance:       newProvenance(description, sourceURL, string(platform)),
	}

	if meta != nil {
		rec.Title = meta.Title
		rec.Organization = meta.Organization
		rec.Location = meta.Location
		rec.EmploymentType = meta.EmploymentType
	}
	if rec.Title == "" {
		rec.Title = titleFallback(doc)
	}

	return rec, nil
}

// titleFallback reads the most prominent heading when no structured title
// exists.
func titleFallback(doc *goquery.Document) string {
	for _, sel := range []string{"h1", ".posting-headline h2", "title"} {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if text := strings.TrimSpace(node.Text()); text != "" && len(text) <= 120 {
				return text
			}
		}
	}
	return ""
}
