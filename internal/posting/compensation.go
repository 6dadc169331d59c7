package posting

import (
	"regexp"
	"strings"
)

// currencyRangeRe captures salary ranges verbatim: symbol or ISO-like
// prefix, two amounts with an optional k suffix, and an optional period
// qualifier.
var currencyRangeRe = regexp.MustCompile(
	`(?i)(?:[$£€]|USD|CAD|EUR|GBP)\s?\d{1,3}(?:,\d{3})*(?:\.\d+)?\s?[kK]?` +
		`\s*(?:-|–|—|to)\s*` +
		`(?:[$£€]|USD|CAD|EUR|GBP)?\s?\d{1,3}(?:,\d{3})*(?:\.\d+)?\s?[kK]?` +
		`(?:\s*(?:USD|CAD|EUR|GBP))?` +
		`(?:\s*(?:/|per)\s*(?:year|yr|annum|month|mo|hour|hr))?`)

// compensationRange extracts the first salary range verbatim, empty when
// none is present.
func compensationRange(text string) string {
	return strings.TrimSpace(currencyRangeRe.FindString(text))
}

// negativeSponsorshipCues mark a sentence as declining sponsorship.
var negativeSponsorshipCues = []string{
	"unable to sponsor",
	"not able to sponsor",
	"cannot sponsor",
	"can't sponsor",
	"will not sponsor",
	"won't sponsor",
	"no visa sponsorship",
	"not provide sponsorship",
	"not offer sponsorship",
	"without sponsorship",
	"not eligible for sponsorship",
}

// positiveSponsorshipCues mark a sentence as offering sponsorship.
var positiveSponsorshipCues = []string{
	"sponsorship is available",
	"sponsorship available",
	"will sponsor",
	"can sponsor",
	"able to sponsor",
	"provide sponsorship",
	"provides sponsorship",
	"offer sponsorship",
	"offers sponsorship",
	"support visa sponsorship",
}

// sponsorshipStatus classifies the posting's visa stance sentence by
// sentence. Negative cues win within a sentence: "we offer relocation but
// cannot sponsor visas" is a refusal.
func sponsorshipStatus(text string) Sponsorship {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "sponsor") {
		return SponsorshipUnspecified
	}

	status := SponsorshipUnspecified
	for _, sentence := range splitSentences(lower) {
		if !strings.Contains(sentence, "sponsor") {
			continue
		}
		for _, cue := range negativeSponsorshipCues {
			if strings.Contains(sentence, cue) {
				return SponsorshipNotSponsored
			}
		}
		for _, cue := range positiveSponsorshipCues {
			if strings.Contains(sentence, cue) {
				status = SponsorshipSponsored
			}
		}
	}
	return status
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n'
	})
}
