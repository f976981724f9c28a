package parser

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dgallion1/doccheck/internal/doctree"
)

// ErrUnsupportedFormat is returned when no parser handles a file type.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrNoChapters is returned by Validate for a document without headings.
var ErrNoChapters = errors.New("document has no chapters")

// Parser converts raw document bytes into a flat chapter list.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Document, error)
}

// Options tune parser behavior.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}
}

// ForContentType picks a parser from an HTTP Content-Type header, falling
// back to the URL's extension when the type is generic.
func ForContentType(contentType, name string, opts Options) (Parser, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = ""
	}
	switch mt {
	case "text/html", "application/xhtml+xml":
		return &HTMLParser{}, nil
	case "text/markdown", "text/x-markdown":
		return &MarkdownParser{}, nil
	case "text/csv":
		return &CSVParser{}, nil
	case "application/pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return &DOCXParser{}, nil
	}
	if p, err := ForFile(name, opts); err == nil {
		return p, nil
	}
	if mt == "text/plain" {
		return &TextParser{}, nil
	}
	// Wiki pages are served as HTML more often than not.
	if mt == "" || mt == "application/octet-stream" {
		return &HTMLParser{}, nil
	}
	return nil, fmt.Errorf("%w: content type %q", ErrUnsupportedFormat, contentType)
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Validate rejects a document with no chapters and returns a warning for
// each chapter with an empty title or a level outside 1..6.
func Validate(doc *doctree.Document) ([]string, error) {
	if doc == nil || len(doc.Chapters) == 0 {
		return nil, ErrNoChapters
	}
	var warnings []string
	for i, ch := range doc.Chapters {
		if strings.TrimSpace(ch.Title) == "" {
			warnings = append(warnings, fmt.Sprintf("chapter %d has an empty title", i))
		}
		if ch.Level < 1 || ch.Level > 6 {
			warnings = append(warnings, fmt.Sprintf("chapter %d %q has level %d outside 1..6", i, ch.Title, ch.Level))
		}
	}
	return warnings, nil
}

func trimExt(filename string, exts ...string) string {
	if filename == "" {
		return ""
	}
	base := filepath.Base(filename)
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(base), ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return base
}
