package posting

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/form-agent/internal/dom"
	"github.com/jonathan/form-agent/internal/textnorm"
)

// minSubtreeLength is the floor below which a subtree cannot be the posting
// body no matter how well its class names score.
const minSubtreeLength = 200

// noiseSelector names the elements stripped before any scoring. Forms are
// removed because the application form shares the page with the posting.
const noiseSelector = "nav, footer, header, script, style, noscript, form, iframe, " +
	".cookie-banner, .cookie-consent, .sidebar, .social-share, .share-buttons, " +
	".ad, .advertisement, .popup"

// contentKeywords are section phrases that mark real posting prose.
var contentKeywords = []string{
	"responsibilities",
	"requirements",
	"qualifications",
	"benefits",
	"what you'll do",
	"what you will do",
	"who you are",
	"about the role",
	"years of experience",
}

// chromeMarkers are phrases that mark site chrome leaking into a candidate.
var chromeMarkers = []string{
	"cookie",
	"sign in",
	"log in",
	"subscribe",
	"similar jobs",
	"all rights reserved",
	"privacy policy",
}

var (
	contentClassRe = regexp.MustCompile(`(?i)job|posting|description|details|vacancy|opening`)
	chromeClassRe  = regexp.MustCompile(`(?i)nav|footer|header|cookie|banner|menu|breadcrumb`)
)

// vendorSelectors returns the description selectors known to fit a portal,
// tried before generic scoring.
func vendorSelectors(platform dom.Platform) []string {
	switch platform {
	case dom.PlatformGreenhouse:
		return []string{".job__description.body", ".job__description", "#content"}
	case dom.PlatformLever:
		return []string{".posting-description", ".posting-page", ".section-wrapper"}
	case dom.PlatformWorkday:
		return []string{"[data-automation-id='jobDescription']", ".job-description"}
	case dom.PlatformAshby:
		return []string{"#job-overview", ".job-description"}
	}
	return nil
}

// bestSubtree returns the text of the highest-scoring visible subtree, or
// empty when no candidate reaches the minimum length.
func bestSubtree(doc *goquery.Document, platform dom.Platform) string {
	doc.Find(noiseSelector).Remove()

	for _, sel := range vendorSelectors(platform) {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if text := blockLines(node); len(text) >= minSubtreeLength {
				return text
			}
		}
	}

	bestScore := 0.0
	bestText := ""
	doc.Find("main, article, section, div").Each(func(_ int, s *goquery.Selection) {
		text := blockLines(s)
		if len(text) < minSubtreeLength {
			return
		}
		if score := scoreSubtree(s, text); score > bestScore {
			bestScore = score
			bestText = text
		}
	})
	return bestText
}

// scoreSubtree weighs a candidate by text volume, bullet density, section
// keyword hits, and class-name relevance, penalizing chrome leakage. The
// length contribution is capped so an ancestor cannot outscore the tight
// posting container purely by swallowing the whole page.
func scoreSubtree(s *goquery.Selection, text string) float64 {
	score := float64(len(text)) / 100
	if score > 40 {
		score = 40
	}

	bullets := float64(s.Find("li").Length()) * 2
	if bullets > 30 {
		bullets = 30
	}
	score += bullets

	lower := strings.ToLower(text)
	for _, kw := range contentKeywords {
		if strings.Contains(lower, kw) {
			score += 5
		}
	}
	for _, marker := range chromeMarkers {
		if strings.Contains(lower, marker) {
			score -= 8
		}
	}

	classes := s.AttrOr("class", "") + " " + s.AttrOr("id", "")
	if contentClassRe.MatchString(classes) {
		score += 10
	}
	if chromeClassRe.MatchString(classes) {
		score -= 20
	}

	return score
}

// blockLines flattens a subtree into one line per block element, bullets
// marked with a leading dash, preserving document order.
func blockLines(s *goquery.Selection) string {
	var lines []string
	s.Find("p, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, b *goquery.Selection) {
		// Skip containers whose text is fully covered by nested blocks.
		if b.Find("p, li").Length() > 0 {
			return
		}
		text := textnorm.CollapseWhitespace(b.Text())
		if text == "" {
			return
		}
		if goquery.NodeName(b) == "li" {
			text = "- " + text
		}
		lines = append(lines, text)
	})
	if len(lines) == 0 {
		return textnorm.CollapseWhitespace(s.Text())
	}
	return strings.Join(lines, "\n")
}
