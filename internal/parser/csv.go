package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/checkmate/internal/outline"
	"github.com/dgallion1/checkmate/internal/section"
)

// CSVParser handles test case exports. The first row names the columns;
// "title" is required and "section" holds a "Parent > Child" path.
type CSVParser struct{}

var csvColumns = map[string]string{
	"section":         "section",
	"section path":    "section",
	"path":            "section",
	"title":           "title",
	"name":            "title",
	"test":            "title",
	"test case":       "title",
	"preconditions":   "preconditions",
	"precondition":    "preconditions",
	"steps":           "steps",
	"expected":        "expected",
	"expected result": "expected",
	"priority":        "priority",
}

func (p *CSVParser) Parse(r io.Reader, filename string) (*outline.Outline, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	o := &outline.Outline{Title: titleFromFilename(filename)}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return o, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if key, ok := csvColumns[h]; ok {
			if _, dup := cols[key]; !dup {
				cols[key] = i
			}
		}
	}
	if _, ok := cols["title"]; !ok {
		return nil, fmt.Errorf("parse csv: no title column in header %q", strings.Join(header, ","))
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		get := func(key string) string {
			i, ok := cols[key]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if blankRow(row) {
			continue
		}
		o.Add(section.SplitPath(get("section")), outline.Case{
			Title:          get("title"),
			Preconditions:  get("preconditions"),
			Steps:          get("steps"),
			ExpectedResult: get("expected"),
			Priority:       get("priority"),
		})
	}
	return o, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
