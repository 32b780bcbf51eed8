package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrayscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 13, 12))
	src.Set(10, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src.Set(11, 10, color.RGBA{A: 255})

	gray := Grayscale(src)
	assert.Equal(t, image.Rect(0, 0, 3, 2), gray.Bounds())
	assert.Equal(t, uint8(255), gray.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), gray.GrayAt(1, 0).Y)
}

func TestGrayPNG(t *testing.T) {
	data, err := grayPNG(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	_, isGray := decoded.(*image.Gray)
	assert.True(t, isGray)
}

func TestNoop(t *testing.T) {
	text, err := Noop{}.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)))
	require.NoError(t, err)
	assert.Empty(t, text)
}
