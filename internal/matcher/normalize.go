package matcher

import (
	"regexp"
	"strings"
	"unicode"
)

// normalizer prepares title and artist strings for similarity comparison.
type normalizer struct {
	cleanupPatterns []*regexp.Regexp
	whitespace      *regexp.Regexp
}

func newNormalizer() *normalizer {
	return &normalizer{
		cleanupPatterns: []*regexp.Regexp{
			// remix/feature qualifiers in parentheses or brackets
			regexp.MustCompile(`\([^)]*\)`),
			regexp.MustCompile(`\[[^\]]*\]`),
			// "feat." / "ft." and everything after
			regexp.MustCompile(`(?i)\s*f(ea)?t\..*`),
			// trailing remix/version qualifiers
			regexp.MustCompile(`(?i)\s*-?\s*(remix|remaster(ed)?|live|acoustic|radio edit|mono|stereo)\s*$`),
		},
		whitespace: regexp.MustCompile(`\s+`),
	}
}

// normalize case-folds, strips diacritics and punctuation, removes remix and
// feature qualifiers, and collapses whitespace.
func (n *normalizer) normalize(input string) string {
	if input == "" {
		return ""
	}

	result := strings.ToLower(input)
	result = foldDiacritics(result)

	for _, pattern := range n.cleanupPatterns {
		result = pattern.ReplaceAllString(result, " ")
	}

	result = stripPunctuation(result)
	result = n.whitespace.ReplaceAllString(strings.TrimSpace(result), " ")

	return result
}

// foldDiacritics maps common accented characters to their base forms.
func foldDiacritics(input string) string {
	replacements := map[rune]rune{
		'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
		'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
		'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
		'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
		'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
		'ñ': 'n', 'ç': 'c',
		'ý': 'y', 'ÿ': 'y',
	}

	var b strings.Builder
	for _, r := range input {
		if replacement, ok := replacements[r]; ok {
			b.WriteRune(replacement)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripPunctuation replaces everything except letters, digits and spaces.
func stripPunctuation(input string) string {
	var b strings.Builder
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}
