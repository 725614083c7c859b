package forensics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestMatcher() *NameMatcher {
	return NewNameMatcher(DefaultNamePatterns())
}

func TestMatchNoExpectedName(t *testing.T) {
	matcher := newTestMatcher()

	result := matcher.Match("any document text at all", "")

	assert.True(t, result.Matched)
	assert.Equal(t, float64(100), result.Confidence)
	assert.Equal(t, MatchExact, result.MatchType)
}

func TestMatchEmptyTextIsNotFraudEvidence(t *testing.T) {
	matcher := newTestMatcher()

	result := matcher.Match("", "John Smith")

	assert.True(t, result.Matched)
	assert.Equal(t, float64(70), result.Confidence)
	assert.Equal(t, MatchFuzzy, result.MatchType)
	assert.NotEmpty(t, result.Discrepancies)
}

func TestMatchVerbatimName(t *testing.T) {
	matcher := newTestMatcher()
	text := "This is to certify that John Smith has successfully completed the course."

	result := matcher.Match(text, "John Smith")

	assert.True(t, result.Matched)
	assert.Equal(t, float64(100), result.Confidence)
	assert.Equal(t, MatchExact, result.MatchType)
}

func TestMatchReorderedName(t *testing.T) {
	matcher := newTestMatcher()
	text := "Certificate awarded to Smith John for outstanding performance."

	result := matcher.Match(text, "John Smith")

	assert.True(t, result.Matched)
	assert.Equal(t, float64(100), result.Confidence)
	assert.Equal(t, MatchExact, result.MatchType)
}

func TestMatchCaseInsensitive(t *testing.T) {
	matcher := newTestMatcher()
	text := "CERTIFICATE OF COMPLETION awarded to JOHN SMITH on this day."

	result := matcher.Match(text, "John Smith")

	assert.True(t, result.Matched)
	assert.Equal(t, float64(100), result.Confidence)
}

func TestMatchOCRDigitConfusions(t *testing.T) {
	matcher := newTestMatcher()
	// 0 for o, 1 for i: classic OCR noise
	text := "This is to certify that J0hn Sm1th completed the program."

	result := matcher.Match(text, "John Smith")

	assert.True(t, result.Matched)
	assert.GreaterOrEqual(t, result.Confidence, float64(95))
}

func TestMatchOCRLigatureConfusion(t *testing.T) {
	matcher := newTestMatcher()
	// "rn" in "Bjorn" misread as "m"
	text := "Awarded to Maria Bjom for completing the program with distinction."

	result := matcher.Match(text, "Maria Bjorn")

	assert.True(t, result.Matched)
}

func TestMatchPartialSingleToken(t *testing.T) {
	matcher := newTestMatcher()
	text := "presented to Johnson for participation"

	result := matcher.Match(text, "Robert Johnson")

	assert.True(t, result.Matched)
	assert.Equal(t, float64(90), result.Confidence)
}

func TestMatchNoResemblance(t *testing.T) {
	matcher := newTestMatcher()
	text := "completely unrelated words here"

	result := matcher.Match(text, "John Smith")

	assert.False(t, result.Matched)
	assert.Equal(t, MatchNone, result.MatchType)
	assert.NotEmpty(t, result.Discrepancies)
}

func TestMatchSubstantialTextWithoutCandidatesIsLenient(t *testing.T) {
	matcher := newTestMatcher()
	// Long text with no recognizable name anywhere: pattern misses are not
	// treated as fraud.
	text := "lorem ipsum dolor sit amet consectetur adipiscing elit sed do eiusmod " +
		"tempor incididunt ut labore et dolore magna aliqua ut enim ad minim veniam"

	result := matcher.Match(text, "John Smith")

	assert.True(t, result.Matched)
	assert.Equal(t, MatchPartial, result.MatchType)
	assert.Equal(t, float64(80), result.Confidence)
}

func TestMatchThreePartNameByFirstAndLast(t *testing.T) {
	matcher := newTestMatcher()
	text := "This certificate is awarded to Maria Garcia in recognition of her work."

	result := matcher.Match(text, "Maria Elena Garcia")

	assert.True(t, result.Matched)
	assert.GreaterOrEqual(t, result.Confidence, float64(95))
}

func TestExtractCandidatesFromCertifyIdiom(t *testing.T) {
	matcher := newTestMatcher()
	text := "This is to certify that Jane Doe has completed the training."

	candidates := matcher.ExtractCandidates(text)

	assert.Contains(t, candidates, "Jane Doe")
}

func TestExtractCandidatesStripsHonorifics(t *testing.T) {
	matcher := newTestMatcher()
	text := "This is to certify that Dr. Jane Doe has completed the training."

	candidates := matcher.ExtractCandidates(text)

	assert.Contains(t, candidates, "Jane Doe")
}

func TestExtractCandidatesRejectsDigitHeavyStrings(t *testing.T) {
	matcher := newTestMatcher()

	for _, c := range matcher.ExtractCandidates("This is to certify that A1B2 C3D4 completed it.") {
		assert.NotEqual(t, "A1b2 C3d4", c)
	}
}

func TestSimilarityBounds(t *testing.T) {
	assert.Equal(t, float64(100), similarity("John Smith", "john smith"))
	assert.Equal(t, float64(0), similarity("", "John Smith"))
	assert.Greater(t, similarity("John Smith", "Jon Smith"), float64(85))
	assert.Less(t, similarity("John Smith", "Xxxx Yyyyy"), float64(50))
}

func TestCanonicalizeOCRFoldsConfusions(t *testing.T) {
	assert.Equal(t, canonicalizeOCR("John Smith"), canonicalizeOCR("J0hn Sm1th"))
	assert.Equal(t, canonicalizeOCR("program"), canonicalizeOCR("prograrn"))
}
