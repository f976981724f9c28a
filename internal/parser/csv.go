package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/doccheck/internal/doctree"
)

// CSVParser reads an exported outline: one chapter per row as
// level,title[,content]. A header row whose first cell is not a number is
// skipped.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	out := newOutline(trimExt(filename, ".csv"))
	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if len(rec) < 2 {
			continue
		}
		level, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("parse csv line %d: level %q is not a number", line, rec[0])
		}
		out.heading(rec[1], level)
		if len(rec) > 2 {
			out.paragraph(rec[2])
		}
	}
	return out.finish(), nil
}
