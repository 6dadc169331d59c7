package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_StripsAsteriskAndCase(t *testing.T) {
	assert.Equal(t, "first name", Normalize("First Name *"))
}

func TestNormalize_StripsNoiseTokens(t *testing.T) {
	assert.Equal(t, "country", Normalize("Country Select an option"))
	assert.Equal(t, "device type", Normalize("Device Type -- Please select"))
}

func TestNormalize_CollapsesRepeatedWords(t *testing.T) {
	assert.Equal(t, "first name", Normalize("First Name First Name"))
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "years of experience", Normalize("Years   of \t experience"))
}

func TestNormalize_Deterministic(t *testing.T) {
	in := "  How did you   hear about us? * "
	assert.Equal(t, Normalize(in), Normalize(in))
}

func TestNormalize_Empty(t *testing.T) {
	assert.Empty(t, Normalize("   "))
	assert.Empty(t, Normalize("***"))
}

func TestSplitIdentifier_Snake(t *testing.T) {
	assert.Equal(t, "first name", SplitIdentifier("first_name"))
}

func TestSplitIdentifier_Camel(t *testing.T) {
	assert.Equal(t, "phone number", SplitIdentifier("phoneNumber"))
}

func TestSplitIdentifier_Nested(t *testing.T) {
	assert.Equal(t, "job application email", SplitIdentifier("job_application[email]"))
}

func TestAlphaRatio(t *testing.T) {
	assert.InDelta(t, 1.0, AlphaRatio("name"), 0.001)
	assert.Less(t, AlphaRatio("x-42-99-17"), 0.5)
	assert.Equal(t, 0.0, AlphaRatio(""))
}

func TestJaccard_Identical(t *testing.T) {
	assert.InDelta(t, 1.0, Jaccard("first name", "First Name *"), 0.001)
}

func TestJaccard_SimilarQuestions(t *testing.T) {
	// The motivating case: two phrasings of the same custom question must
	// clear the 0.65 answer-matching threshold.
	sim := Jaccard(
		"Why are you interested in this role",
		"Why are you interested in this position role",
	)
	assert.GreaterOrEqual(t, sim, 0.65)
}

func TestJaccard_Disjoint(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard("first name", "salary expectations"))
}

func TestJaccard_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard("", "anything"))
}

func TestCollapseWhitespace_PreservesCase(t *testing.T) {
	assert.Equal(t, "Hello, World!", CollapseWhitespace("  Hello,   World!  "))
}
