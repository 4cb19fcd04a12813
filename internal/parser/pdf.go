package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/checkmate/internal/outline"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available. Extracted text is read the
// same way as a plain text file, with page numbers kept on each heading.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*outline.Outline, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "checkmate-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmp.Name())
	if err != nil && p.FallbackPdftotext {
		text, err = extractPdftotext(tmp.Name())
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	b := newBuilder(titleFromFilename(filename))
	for i, page := range splitPages(text) {
		for _, para := range splitParagraphs(page) {
			addParagraph(b, para, i+1)
		}
	}
	return b.finish(), nil
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
