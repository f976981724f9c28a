package structure

import (
	"regexp"
	"strings"
	"unicode"
)

// leadingNumbering matches section numbers such as "1 ", "2.", "3.1.4)" or "4、".
var leadingNumbering = regexp.MustCompile(`^\s*[0-9]+(?:\.[0-9]+)*(?:[.)、．]\s*|\s+)`)

// Normalizer turns a chapter title into its comparison key.
type Normalizer struct {
	StripNumbering   bool
	StripPunctuation bool
}

// DefaultNormalizer trims, strips numbering and punctuation, collapses
// whitespace and case-folds.
var DefaultNormalizer = Normalizer{StripNumbering: true, StripPunctuation: true}

// Clean returns the comparison key for title.
func (n Normalizer) Clean(title string) string {
	s := strings.TrimSpace(title)
	if n.StripNumbering {
		s = leadingNumbering.ReplaceAllString(s, "")
	}
	if n.StripPunctuation {
		s = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
				return r
			}
			return ' '
		}, s)
	}
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// CleanTitle normalizes a title with DefaultNormalizer.
func CleanTitle(title string) string {
	return DefaultNormalizer.Clean(title)
}
