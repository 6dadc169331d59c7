package posting

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingFixture = `<!DOCTYPE html>
<html>
<head>
<title>Backend Engineer - Acme</title>
<script type="application/ld+json">
{
  "@type": "JobPosting",
  "title": "Backend Engineer",
  "hiringOrganization": {"@type": "Organization", "name": "Acme Corp"},
  "jobLocation": {"@type": "Place", "address": {"addressLocality": "Portland", "addressRegion": "OR", "addressCountry": "US"}},
  "employmentType": "FULL_TIME",
  "description": "<p>About the role</p><p>We build the control plane that keeps Acme's fleet of services healthy. You will own critical ingestion pipelines end to end and work closely with the platform team on reliability targets across three regions.</p>"
}
</script>
</head>
<body>
<nav>Home | Jobs | Sign in</nav>
<div class="job-description">
  <h2>What you'll do</h2>
  <ul>
    <li>Design and operate Go services handling ingestion at scale</li>
    <li>Own PostgreSQL schema evolution and query performance</li>
    <li>Build observability into every deploy</li>
  </ul>
  <h2>Requirements</h2>
  <ul>
    <li>5+ years of experience building backend systems</li>
    <li>Fluency in Go or Python and strong SQL fundamentals</li>
    <li>Production Kubernetes experience</li>
  </ul>
  <h2>Nice to have</h2>
  <ul>
    <li>Kafka or comparable streaming systems</li>
  </ul>
  <h2>Benefits</h2>
  <ul>
    <li>Salary range $120,000 - $150,000 / year depending on experience</li>
    <li>Remote-first with quarterly onsites</li>
  </ul>
  <p>We are unable to sponsor visas for this position.</p>
</div>
<footer>All rights reserved. Privacy policy. Similar jobs you may like.</footer>
</body>
</html>`

func TestExtract_FullFixture(t *testing.T) {
	rec, err := Extract(postingFixture, "https://boards.greenhouse.io/acme/jobs/42")
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, SchemaVersion, rec.SchemaVersion)
	_, err = uuid.Parse(rec.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Backend Engineer", rec.Title)
	assert.Equal(t, "Acme Corp", rec.Organization)
	assert.Equal(t, "Portland, OR, US", rec.Location)
	assert.Equal(t, "FULL_TIME", rec.EmploymentType)

	assert.Contains(t, rec.Description, "control plane")
	assert.Contains(t, rec.Description, "ingestion at scale")
	assert.NotContains(t, rec.Description, "Sign in")
	assert.NotContains(t, rec.Description, "Similar jobs")

	assert.NotEmpty(t, rec.Responsibilities)
	assert.Contains(t, rec.Requirements[0], "5+ years")
	require.Len(t, rec.Preferred, 1)
	assert.Contains(t, rec.Preferred[0], "Kafka")
	assert.NotEmpty(t, rec.Benefits)

	assert.Equal(t, "$120,000 - $150,000 / year", rec.Compensation)
	assert.Equal(t, SponsorshipNotSponsored, rec.Sponsorship)
	assert.Equal(t, 5, rec.YearsRequired)

	assert.Contains(t, rec.Skills, "Go")
	assert.Contains(t, rec.Skills, "PostgreSQL")
	assert.Contains(t, rec.Skills, "Kubernetes")
	assert.Contains(t, rec.Skills, "Kafka")

	assert.Equal(t, "greenhouse", rec.Provenance.Platform)
	assert.Len(t, rec.Provenance.Hash, 64)
	assert.NotEmpty(t, rec.Provenance.Timestamp)
}

func TestExtract_NilBelowThreshold(t *testing.T) {
	rec, err := Extract(`<html><body><p>Too short to be a posting.</p></body></html>`, "")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestExtract_PageStatePayload(t *testing.T) {
	body := strings.Repeat("Own the ingestion pipeline and its reliability targets. ", 8)
	html := `<html><head>
	<script id="__NEXT_DATA__" type="application/json">
	{"props":{"pageProps":{"job":{"jobDescription":"` + body + `"}}}}
	</script>
	</head><body><p>loading…</p></body></html>`

	rec, err := Extract(html, "")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Contains(t, rec.Description, "ingestion pipeline")
}

func TestExtract_InlineStateAssignment(t *testing.T) {
	body := strings.Repeat("Build resilient services and mentor the team on operational care. ", 8)
	html := `<html><head>
	<script>window.__INITIAL_STATE__ = {"posting":{"description":"` + body + `"}};</script>
	</head><body></body></html>`

	rec, err := Extract(html, "")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Contains(t, rec.Description, "resilient services")
}

func TestMergeSources_DeduplicatesLongParagraphs(t *testing.T) {
	para := "We build the control plane that keeps the fleet of services healthy."
	a := para + "\nRequirements"
	b := para + "\nSomething only the second source knows about the position."

	merged := mergeSources(a, b)
	assert.Equal(t, 1, strings.Count(merged, "control plane"))
	assert.Contains(t, merged, "second source")
}

func TestMergeSources_KeepsShortRepeats(t *testing.T) {
	merged := mergeSources("Requirements\nfirst", "Requirements\nsecond")
	assert.Equal(t, 2, strings.Count(merged, "Requirements"))
}

func TestTrimChrome(t *testing.T) {
	body := strings.Repeat("Meaningful posting prose about the daily work. ", 10)
	text := "Menu Home Careers About the role " + body + " Similar jobs Engineer II Engineer III"

	trimmed := trimChrome(text)
	assert.True(t, strings.HasPrefix(trimmed, "About the role"))
	assert.NotContains(t, trimmed, "Similar jobs")
	assert.NotContains(t, trimmed, "Menu Home")
}

func TestTrimChrome_MarkerAtStartWinsOverLaterMarker(t *testing.T) {
	text := "Job description We build the ingestion control plane for a logistics platform. " +
		"About the role You will own the scheduling services."

	trimmed := trimChrome(text)
	assert.True(t, strings.HasPrefix(trimmed, "Job description"))
	assert.Contains(t, trimmed, "ingestion control plane")
	assert.Contains(t, trimmed, "About the role")
}

func TestTrimChrome_EndMarkerInsideMinOffsetIgnored(t *testing.T) {
	text := "Job description Apply now at the top, then the actual posting body continues here."
	trimmed := trimChrome(text)
	assert.Contains(t, trimmed, "Apply now")
}

func TestSplitSections(t *testing.T) {
	text := strings.Join([]string{
		"We are a distributed systems team.",
		"What you'll do",
		"- Ship Go services",
		"- Review designs",
		"Minimum qualifications",
		"- 3 years building APIs",
		"Nice to have",
		"- Rust",
		"Benefits",
		"- Health cover",
	}, "\n")

	s := splitSections(text)
	assert.Equal(t, "We are a distributed systems team.", s.Summary)
	assert.Equal(t, []string{"Ship Go services", "Review designs"}, s.Responsibilities)
	assert.Equal(t, []string{"3 years building APIs"}, s.Requirements)
	assert.Equal(t, []string{"Rust"}, s.Preferred)
	assert.Equal(t, []string{"Health cover"}, s.Benefits)
}

func TestSplitSections_PreferredBeatsRequirements(t *testing.T) {
	s := splitSections("Preferred qualifications\n- GraphQL")
	assert.Empty(t, s.Requirements)
	assert.Equal(t, []string{"GraphQL"}, s.Preferred)
}

func TestSplitSections_LongLineIsNotHeading(t *testing.T) {
	line := "Requirements for this position include a long list of things that cannot possibly be a heading line"
	s := splitSections(line)
	assert.Empty(t, s.Requirements)
	assert.Equal(t, line, s.Summary)
}

func TestCompensationRange(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The range is $120,000 - $150,000 / year for this role.", "$120,000 - $150,000 / year"},
		{"Pays £60,000 to £75,000 depending on level.", "£60,000 to £75,000"},
		{"Base of $90k - $110k plus equity.", "$90k - $110k"},
		{"Compensation: 140,000 USD", ""},
		{"No numbers at all here.", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, compensationRange(tc.in), "input %q", tc.in)
	}
}

func TestSponsorshipStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Sponsorship
	}{
		{"We are unable to sponsor visas at this time.", SponsorshipNotSponsored},
		{"Visa sponsorship is available for exceptional candidates.", SponsorshipSponsored},
		{"We offer relocation. We cannot sponsor work visas.", SponsorshipNotSponsored},
		{"Great team, great mission.", SponsorshipUnspecified},
		{"Our sponsors include several community groups.", SponsorshipUnspecified},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, sponsorshipStatus(tc.in), "input %q", tc.in)
	}
}

func TestDeriveSkills(t *testing.T) {
	skills := deriveSkills("Experience with Golang, k8s, PostgreSQL and React preferred. C++ a plus.")
	assert.Equal(t, []string{"C++", "Go", "Kubernetes", "PostgreSQL", "React"}, skills)
}

func TestYearsRequired(t *testing.T) {
	assert.Equal(t, 5, yearsRequired("5+ years of backend experience"))
	assert.Equal(t, 7, yearsRequired("3 years of Go experience and 7 years of total engineering experience"))
	assert.Equal(t, 4, yearsRequired("a minimum of 4 years in production operations"))
	assert.Equal(t, 0, yearsRequired("no explicit requirement"))
}

func TestFindMetadata_GraphAndArrays(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@graph":[{"@type":"WebSite"},{"@type":["JobPosting"],"title":"SRE","employmentType":["FULL_TIME","CONTRACT"],"hiringOrganization":{"name":"Beta"}}]}
	</script></head><body></body></html>`

	rec, err := Extract(html, "")
	require.NoError(t, err)
	assert.Nil(t, rec) // no description long enough, but metadata parsing must not error
}
