package semantic

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnclearVerdict is returned when a model reply is neither yes nor no.
var ErrUnclearVerdict = errors.New("unclear verdict")

var codeBlockRe = regexp.MustCompile("(?s)^```(?:\\w+)?\\s*(.*?)\\s*```$")

var (
	yesWords = map[string]bool{"yes": true, "y": true, "true": true, "是": true, "是的": true}
	noWords  = map[string]bool{"no": true, "n": true, "false": true, "否": true, "不是": true}
)

// maxVerdictWords bounds how far into a reply ParseVerdict looks, so a
// lead-in like "Answer: yes" is read but a stray "no" deep in an
// explanation is not.
const maxVerdictWords = 5

// ParseVerdict reads a yes/no answer from the first few words of a model
// reply. The first yes or no word found wins.
func ParseVerdict(reply string) (bool, error) {
	s := stripCodeBlock(reply)
	words := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	if len(words) == 0 {
		return false, fmt.Errorf("%w: empty reply", ErrUnclearVerdict)
	}
	for _, w := range words[:min(len(words), maxVerdictWords)] {
		w = strings.ToLower(w)
		switch {
		case yesWords[w]:
			return true, nil
		case noWords[w]:
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: %q", ErrUnclearVerdict, truncate(s, 80))
}

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
