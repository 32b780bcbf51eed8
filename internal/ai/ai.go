// Package ai holds the generative model backends used to caption images and
// explain pages.
package ai

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// CaptionPrompt asks a vision model for a short factual caption.
const CaptionPrompt = "Describe this image in one short sentence for a student. Be factual and do not embellish. Return only the sentence."

// DefaultCaption is what Noop returns for every image.
const DefaultCaption = "an image"

// Noop is a captioner for deployments without a vision model.
type Noop struct{}

func (Noop) Describe(context.Context, image.Image) (string, error) {
	return DefaultCaption, nil
}

// EncodePNG encodes img for inline upload to a model.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// CleanText trims model output and strips a surrounding code fence.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.Index(s, "\n"); nl != -1 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
