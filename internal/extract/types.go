package extract

import (
	"context"
	"fmt"
	"image"
	"strings"
)

// OCR recognizes text in an image.
type OCR interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Captioner produces a short natural-language description of an image.
type Captioner interface {
	Describe(ctx context.Context, img image.Image) (string, error)
}

// ExtractedImage is one raster image found in a page's content stream.
type ExtractedImage struct {
	ID     string
	Data   []byte
	Format string
}

// Placeholder is the token standing in for the image in the raw page text.
func (i ExtractedImage) Placeholder() string {
	return placeholder(i.ID)
}

func imageID(pageNumber, index int) string {
	return fmt.Sprintf("page%d_img%d", pageNumber, index)
}

func placeholder(id string) string {
	return "[IMAGE_" + strings.ToUpper(id) + "]"
}

// DescriptionKind tells how an image was turned into text.
type DescriptionKind int

const (
	Transcribed DescriptionKind = iota + 1
	Captioned
)

func (k DescriptionKind) String() string {
	switch k {
	case Transcribed:
		return "transcribed"
	case Captioned:
		return "captioned"
	}
	return "unknown"
}

// ImageDescription is the text chosen for one image.
type ImageDescription struct {
	ImageID string
	Kind    DescriptionKind
	Content string
}

// String renders the description the way it appears in page text.
func (d ImageDescription) String() string {
	if d.Kind == Transcribed {
		return fmt.Sprintf("(Equation/Text in Image: %s)", d.Content)
	}
	return fmt.Sprintf("(Image Description: %s)", d.Content)
}

// PageExtractionResult is the output of ExtractPage.
type PageExtractionResult struct {
	PageNumber int
	Text       string
	Images     []ImageDescription
}
