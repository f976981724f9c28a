package parser

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/doccheck/internal/doctree"
)

// numberedHeading matches lines like "3 Design", "3.2 Data Model" or
// "3.2.1. Tables". The number of components gives the level.
var numberedHeading = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,3}){0,5})\.?\s+(\S.*)$`)

const maxHeadingRunes = 120

// TextParser handles plain text. Numbered lines become chapters; everything
// else is body text.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	out := newOutline(trimExt(filename, ".txt"))
	if err := scanOutline(r, out); err != nil {
		return nil, err
	}
	return out.finish(), nil
}

func scanOutline(r io.Reader, out *outline) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var para strings.Builder
	flushPara := func() {
		out.paragraph(para.String())
		para.Reset()
	}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\f\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flushPara()
			continue
		}
		if title, level, ok := parseNumberedHeading(trimmed); ok {
			flushPara()
			out.heading(title, level)
			continue
		}
		if para.Len() > 0 {
			para.WriteByte('\n')
		}
		para.WriteString(trimmed)
	}
	flushPara()
	return scanner.Err()
}

// parseNumberedHeading keeps the number in the title so chapters read as
// they do in the document; the normalizer strips it for comparison.
func parseNumberedHeading(line string) (string, int, bool) {
	if utf8.RuneCountInString(line) > maxHeadingRunes {
		return "", 0, false
	}
	m := numberedHeading.FindStringSubmatch(line)
	if m == nil {
		return "", 0, false
	}
	body := m[2]
	// Sentences and list items ending in punctuation are body text.
	if strings.HasSuffix(body, ".") || strings.HasSuffix(body, ",") || strings.HasSuffix(body, ";") {
		return "", 0, false
	}
	r, _ := utf8.DecodeRuneInString(body)
	if r >= '0' && r <= '9' {
		return "", 0, false
	}
	return line, strings.Count(m[1], ".") + 1, true
}
