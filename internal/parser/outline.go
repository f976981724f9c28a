package parser

import (
	"strings"

	"github.com/dgallion1/doccheck/internal/doctree"
)

// outline collects headings in document order and attaches body text to the
// most recent one. Text before the first heading is dropped.
type outline struct {
	doc  *doctree.Document
	text strings.Builder
}

func newOutline(title string) *outline {
	return &outline{doc: &doctree.Document{Title: title, Chapters: []doctree.ChapterInfo{}}}
}

func (o *outline) heading(title string, level int) {
	o.flush()
	o.doc.Chapters = append(o.doc.Chapters, doctree.ChapterInfo{
		Title:    strings.TrimSpace(title),
		Level:    level,
		Position: len(o.doc.Chapters),
	})
}

func (o *outline) paragraph(t string) {
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}
	if o.text.Len() > 0 {
		o.text.WriteString("\n\n")
	}
	o.text.WriteString(t)
}

func (o *outline) flush() {
	t := o.text.String()
	o.text.Reset()
	if t == "" || len(o.doc.Chapters) == 0 {
		return
	}
	last := &o.doc.Chapters[len(o.doc.Chapters)-1]
	if last.Content != "" {
		last.Content += "\n\n" + t
	} else {
		last.Content = t
	}
}

func (o *outline) finish() *doctree.Document {
	o.flush()
	return o.doc
}
