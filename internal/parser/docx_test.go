package parser

import (
	"bytes"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDOCXParser(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().Style("Heading1").AddText("Billing")
	doc.AddParagraph().AddText("Invoice totals add up")
	doc.AddParagraph().AddText("Expected: totals match line items")
	doc.AddParagraph().Style("Heading2").AddText("Refunds")
	doc.AddParagraph().AddText("Partial refund")

	var buf bytes.Buffer
	_, err := doc.WriteTo(&buf)
	require.NoError(t, err)

	p := &DOCXParser{}
	o, err := p.Parse(&buf, "billing.docx")
	require.NoError(t, err)

	assert.Equal(t, "billing", o.Title)
	require.Len(t, o.Children, 1)
	billing := o.Children[0]
	assert.Equal(t, "Billing", billing.Title)
	require.Len(t, billing.Cases, 1)
	assert.Equal(t, "totals match line items", billing.Cases[0].ExpectedResult)
	require.Len(t, billing.Children, 1)
	assert.Equal(t, "Partial refund", billing.Children[0].Cases[0].Title)
}

func TestDocxHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, docxHeadingLevel("Heading1"))
	assert.Equal(t, 3, docxHeadingLevel("heading 3"))
	assert.Equal(t, 0, docxHeadingLevel("Heading"))
	assert.Equal(t, 0, docxHeadingLevel("Heading10"))
	assert.Equal(t, 0, docxHeadingLevel("Normal"))
}
