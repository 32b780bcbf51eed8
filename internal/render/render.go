// Package render rasterizes PDF pages with MuPDF.
package render

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/studymate/internal/extract"
	"github.com/gen2brain/go-fitz"
)

// DefaultDPI renders at twice the 72 DPI of PDF user space.
const DefaultDPI = 144

// Renderer turns one page of a PDF into a PNG.
type Renderer struct {
	dpi float64
}

func NewRenderer(dpi float64) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{dpi: dpi}
}

// RenderPage renders the 1-based page pageNumber of doc as PNG bytes.
func (r *Renderer) RenderPage(ctx context.Context, doc []byte, pageNumber int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, &extract.ExtractionError{Kind: extract.KindDocumentDecode, Page: pageNumber, Message: "empty document"}
	}

	d, err := fitz.NewFromMemory(doc)
	if err != nil {
		return nil, &extract.ExtractionError{Kind: extract.KindDocumentDecode, Page: pageNumber, Message: "failed to open document", Err: err}
	}
	defer d.Close()

	total := d.NumPage()
	if pageNumber < 1 || pageNumber > total {
		return nil, &extract.ExtractionError{
			Kind:    extract.KindInvalidPageNumber,
			Page:    pageNumber,
			Message: fmt.Sprintf("page must be between 1 and %d", total),
		}
	}

	png, err := d.ImagePNG(pageNumber-1, r.dpi)
	if err != nil {
		return nil, &extract.ExtractionError{Kind: extract.KindDocumentDecode, Page: pageNumber, Message: "failed to render page", Err: err}
	}
	return png, nil
}
