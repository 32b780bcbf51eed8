//go:build !ocr

package ocr

import (
	"context"
	"image"
)

// Tesseract is unavailable in builds without the ocr tag.
type Tesseract struct{}

func NewTesseract(string) (*Tesseract, error) {
	return nil, ErrUnavailable
}

func (*Tesseract) Recognize(context.Context, image.Image) (string, error) {
	return "", ErrUnavailable
}

func (*Tesseract) Close() error { return nil }
