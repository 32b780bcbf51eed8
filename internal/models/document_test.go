package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPDFDocument_Page(t *testing.T) {
	doc := &PDFDocument{Pages: []ParsedPage{
		{PageNumber: 3, Text: "three"},
		{PageNumber: 1, Text: "one"},
	}}

	p, ok := doc.Page(1)
	assert.True(t, ok)
	assert.Equal(t, "one", p.Text)

	_, ok = doc.Page(2)
	assert.False(t, ok)
}
