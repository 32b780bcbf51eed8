// Package ocr provides the text recognition engines used on embedded images.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// ErrUnavailable is returned when the binary was built without Tesseract.
var ErrUnavailable = errors.New("OCR requires Tesseract; rebuild with -tags ocr after installing tesseract-ocr and libtesseract-dev")

// Noop never recognizes anything, so every image falls through to captioning.
type Noop struct{}

func (Noop) Recognize(context.Context, image.Image) (string, error) {
	return "", nil
}

// Grayscale converts img to 8-bit luminance, the input Tesseract reads best.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// grayPNG encodes the grayscale version of img as PNG.
func grayPNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Grayscale(img)); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}
	return buf.Bytes(), nil
}
