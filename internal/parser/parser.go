// Package parser turns uploaded test plans into outlines. Headings become
// sections and the text under them becomes test cases.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/checkmate/internal/outline"
)

// Parser converts raw document bytes into an Outline.
type Parser interface {
	Parse(r io.Reader, filename string) (*outline.Outline, error)
}

// Options tunes parser construction.
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
	".yaml":     true,
	".yml":      true,
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
	case ".yaml", ".yml":
		return &YAMLParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
