package extract

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Formats pdfcpu hands back raw that no registered decoder can read.
var unsupportedFormats = map[string]bool{
	"jpx":   true,
	"jp2":   true,
	"jb2":   true,
	"jbig2": true,
	"ccitt": true,
}

// decodeImage decodes an embedded image into an opaque RGBA image,
// flattening any transparency onto white.
func decodeImage(data []byte, format string) (*image.RGBA, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	if unsupportedFormats[strings.ToLower(format)] {
		return nil, fmt.Errorf("unsupported image format %q", format)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, errors.New("image has no pixels")
	}

	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	return dst, nil
}
