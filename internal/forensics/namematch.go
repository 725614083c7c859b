package forensics

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// ocrConfusions maps characters OCR commonly misreads onto a canonical
// form, so "J0hn Sm1th" still matches "John Smith".
var ocrConfusions = map[rune]rune{
	'0': 'o',
	'1': 'l',
	'i': 'l',
	'5': 's',
	'8': 'b',
}

// ocrLigatures are multi-character merges OCR produces on tight kerning
var ocrLigatures = [][2]string{
	{"rn", "m"},
	{"vv", "w"},
	{"cl", "d"},
	{"ii", "u"},
}

// NameMatcher extracts name candidates from certificate text and fuzzy-matches
// them against an expected identity. It is deliberately lenient: OCR noise
// makes rigid equality unsafe, so the matcher escalates to no_match only when
// no plausible overlap exists anywhere in the text.
type NameMatcher struct {
	patterns *NamePatterns
}

// NewNameMatcher creates a matcher sharing the given pattern configuration
func NewNameMatcher(patterns *NamePatterns) *NameMatcher {
	if patterns == nil {
		patterns = DefaultNamePatterns()
	}
	return &NameMatcher{patterns: patterns}
}

// Match compares the expected identity against the extracted document text
func (m *NameMatcher) Match(text, expectedName string) NameMatchResult {
	expectedName = strings.TrimSpace(expectedName)

	// No expected identity: nothing to dispute
	if expectedName == "" {
		return NameMatchResult{
			Matched:    true,
			Confidence: 100,
			MatchType:  MatchExact,
		}
	}

	result := NameMatchResult{ExpectedName: expectedName}

	if strings.TrimSpace(text) == "" {
		// Absent text is weak evidence either way
		result.Matched = true
		result.Confidence = 70
		result.MatchType = MatchFuzzy
		result.Discrepancies = append(result.Discrepancies,
			"no text could be extracted from the document; name could not be checked")
		return result
	}

	normText := normalizeText(text)

	// Stage 1: verbatim presence of any name-order variant
	if variant := m.findVariant(normText, expectedName); variant != "" {
		result.Matched = true
		result.Confidence = 100
		result.MatchType = MatchExact
		result.ExtractedName = variant
		return result
	}

	// Stage 2: per-token coverage with OCR-noise tolerance
	if r, ok := m.tokenCoverage(normText, expectedName); ok {
		return r
	}

	// Stage 3: candidate comparison fallback
	candidates := m.ExtractCandidates(text)
	if len(candidates) > 0 {
		return m.compareCandidates(candidates, expectedName)
	}

	// Stage 4: extraction patterns missed but there is substantial text.
	// Pattern misses are not fraud evidence.
	if len(normText) >= 100 {
		result.Matched = true
		result.Confidence = 80
		result.MatchType = MatchPartial
		result.Discrepancies = append(result.Discrepancies,
			"no name candidates were recognized in the document text")
		return result
	}

	result.MatchType = MatchNone
	result.Discrepancies = append(result.Discrepancies,
		fmt.Sprintf("expected name %q was not found in the document", expectedName))
	return result
}

// ExtractCandidates harvests raw name candidates from the prioritized pattern
// set, normalizes, and filters them.
func (m *NameMatcher) ExtractCandidates(text string) []string {
	seen := make(map[string]struct{})
	var candidates []string

	for _, p := range m.patterns.Patterns {
		for _, match := range p.Re.FindAllStringSubmatch(text, -1) {
			candidate := m.normalizeCandidate(match[1])
			if candidate == "" {
				continue
			}
			if _, dup := seen[strings.ToLower(candidate)]; dup {
				continue
			}
			seen[strings.ToLower(candidate)] = struct{}{}
			candidates = append(candidates, candidate)
		}
	}

	return candidates
}

// normalizeCandidate collapses whitespace, strips honorifics, converts
// ALL-CAPS to title case, and rejects implausible candidates.
func (m *NameMatcher) normalizeCandidate(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	s = m.patterns.Honorifics.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if s == strings.ToUpper(s) {
		s = titleCase(strings.ToLower(s))
	}

	if len(s) < 3 || len(s) > 50 {
		return ""
	}

	letters, digits := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	if letters < 2 || digits*3 > letters {
		return ""
	}

	// Reject pure boilerplate
	allStop := true
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		if _, ok := m.patterns.Stopwords[tok]; !ok {
			allStop = false
			break
		}
	}
	if allStop {
		return ""
	}

	return s
}

// findVariant tests every name-order variant of the expected name for
// verbatim presence in the normalized text.
func (m *NameMatcher) findVariant(normText, expectedName string) string {
	tokens := strings.Fields(normalizeText(expectedName))
	if len(tokens) == 0 {
		return ""
	}

	var variants []string
	variants = append(variants, permutations(tokens)...)
	variants = append(variants, strings.Join(tokens, ""))
	if len(tokens) > 2 {
		first, last := tokens[0], tokens[len(tokens)-1]
		variants = append(variants, first+" "+last, last+" "+first)
	}

	squashed := strings.ReplaceAll(normText, " ", "")
	for _, v := range variants {
		if v == "" {
			continue
		}
		if strings.Contains(normText, v) {
			return v
		}
		if !strings.Contains(v, " ") && len(v) > 3 && strings.Contains(squashed, v) {
			return v
		}
	}
	return ""
}

// tokenCoverage checks how many expected-name tokens appear in the text,
// directly or through the OCR confusion table.
func (m *NameMatcher) tokenCoverage(normText, expectedName string) (NameMatchResult, bool) {
	tokens := strings.Fields(normalizeText(expectedName))
	var checked, found int
	var foundLongToken bool

	for _, tok := range tokens {
		if len(tok) <= 1 {
			continue
		}
		checked++
		if strings.Contains(normText, tok) || fuzzyTokenInText(tok, normText) {
			found++
			if len(tok) >= 4 {
				foundLongToken = true
			}
		}
	}

	if checked == 0 {
		return NameMatchResult{}, false
	}

	result := NameMatchResult{
		ExpectedName:  expectedName,
		ExtractedName: expectedName,
	}

	switch {
	case found == checked:
		result.Matched = true
		result.Confidence = 100
		result.MatchType = MatchExact
		return result, true
	case found >= 2:
		result.Matched = true
		result.Confidence = 95
		result.MatchType = MatchExact
		return result, true
	case checked == 2 && found == 1:
		result.Matched = true
		result.Confidence = 90
		result.MatchType = MatchExact
		result.Discrepancies = append(result.Discrepancies,
			"only one of two name tokens was found in the document")
		return result, true
	case found == 1 && foundLongToken:
		result.Matched = true
		result.Confidence = 85
		result.MatchType = MatchPartial
		result.Discrepancies = append(result.Discrepancies,
			"only part of the expected name was found in the document")
		return result, true
	}

	return NameMatchResult{}, false
}

// compareCandidates scores every candidate against the expected name and
// classifies the best one.
func (m *NameMatcher) compareCandidates(candidates []string, expectedName string) NameMatchResult {
	result := NameMatchResult{ExpectedName: expectedName}

	var best string
	var bestSim float64
	var bestParts int

	for _, c := range candidates {
		sim := similarity(c, expectedName)
		parts := matchedParts(c, expectedName)
		if sim > bestSim || (sim == bestSim && parts > bestParts) {
			best, bestSim, bestParts = c, sim, parts
		}
	}

	result.ExtractedName = best

	switch {
	case bestSim >= 95 || (bestParts >= 2 && bestSim >= 85):
		result.Matched = true
		result.Confidence = 100
		result.MatchType = MatchExact
	case bestSim >= 85 || (bestParts >= 2 && bestSim >= 70):
		result.Matched = true
		result.Confidence = maxFloat(95, bestSim)
		result.MatchType = MatchExact
	case bestSim >= 70 || bestParts >= 2:
		result.Matched = true
		result.Confidence = maxFloat(85, bestSim)
		result.MatchType = MatchPartial
	case bestSim >= 50 || bestParts >= 1:
		result.Matched = true
		result.Confidence = maxFloat(70, bestSim)
		result.MatchType = MatchFuzzy
		result.Discrepancies = append(result.Discrepancies,
			fmt.Sprintf("closest candidate %q only loosely matches expected name %q", best, expectedName))
	default:
		result.MatchType = MatchNone
		result.Confidence = bestSim
		result.Discrepancies = append(result.Discrepancies,
			fmt.Sprintf("no candidate resembled expected name %q; closest was %q", expectedName, best))
	}

	return result
}

// similarity is a Levenshtein-derived score in [0,100]
func similarity(a, b string) float64 {
	a = normalizeText(a)
	b = normalizeText(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := (1 - float64(dist)/float64(maxLen)) * 100
	if score < 0 {
		return 0
	}
	return score
}

// matchedParts counts expected-name tokens that have a counterpart among the
// candidate's tokens: near-equal (>=85 similar) or >=3-char prefix relation
// (initials and abbreviations).
func matchedParts(candidate, expected string) int {
	cTokens := strings.Fields(normalizeText(candidate))
	eTokens := strings.Fields(normalizeText(expected))

	matched := 0
	used := make([]bool, len(cTokens))
	for _, e := range eTokens {
		for i, c := range cTokens {
			if used[i] {
				continue
			}
			if similarity(c, e) >= 85 || prefixRelated(c, e) {
				used[i] = true
				matched++
				break
			}
		}
	}
	return matched
}

func prefixRelated(a, b string) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	return strings.HasPrefix(a, b[:3]) && strings.HasPrefix(b, a[:3])
}

// fuzzyTokenInText applies OCR-noise-tolerant containment tests
func fuzzyTokenInText(token, text string) bool {
	canonToken := canonicalizeOCR(token)
	canonText := canonicalizeOCR(text)
	if strings.Contains(canonText, canonToken) {
		return true
	}

	// Vowel-stripped comparison catches dropped or misread vowels
	strippedToken := stripVowels(canonToken)
	if len(strippedToken) >= 3 && strings.Contains(stripVowels(canonText), strippedToken) {
		return true
	}

	// Positional sliding window: 80% of characters in place
	n := len(canonToken)
	if n < 4 {
		return false
	}
	needed := (n*8 + 9) / 10
	for i := 0; i+n <= len(canonText); i++ {
		window := canonText[i : i+n]
		same := 0
		for j := 0; j < n; j++ {
			if window[j] == canonToken[j] {
				same++
			}
		}
		if same >= needed {
			return true
		}
	}
	return false
}

// canonicalizeOCR folds common OCR confusions onto canonical characters
func canonicalizeOCR(s string) string {
	s = strings.ToLower(s)
	for _, lig := range ocrLigatures {
		s = strings.ReplaceAll(s, lig[0], lig[1])
	}
	return strings.Map(func(r rune) rune {
		if c, ok := ocrConfusions[r]; ok {
			return c
		}
		return r
	}, s)
}

func stripVowels(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			return -1
		}
		return r
	}, s)
}

// normalizeText lowercases and collapses whitespace
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// permutations returns every ordering of up to four tokens joined by spaces.
// Larger names fall back to the original and reversed orders only.
func permutations(tokens []string) []string {
	if len(tokens) > 4 {
		reversed := make([]string, len(tokens))
		for i, t := range tokens {
			reversed[len(tokens)-1-i] = t
		}
		return []string{strings.Join(tokens, " "), strings.Join(reversed, " ")}
	}

	var out []string
	var permute func(prefix, rest []string)
	permute = func(prefix, rest []string) {
		if len(rest) == 0 {
			out = append(out, strings.Join(prefix, " "))
			return
		}
		for i := range rest {
			next := make([]string, 0, len(rest)-1)
			next = append(next, rest[:i]...)
			next = append(next, rest[i+1:]...)
			branch := make([]string, len(prefix), len(prefix)+1)
			copy(branch, prefix)
			permute(append(branch, rest[i]), next)
		}
	}
	permute(nil, tokens)
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
