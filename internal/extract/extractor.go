package extract

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/Lllllllleong/studymate/internal/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultMinOCRChars is the shortest trimmed OCR result kept as a transcription.
const DefaultMinOCRChars = 9

// Config tunes a PageExtractor.
type Config struct {
	// MinOCRChars is the minimum trimmed rune count for an OCR result to be
	// used; shorter results fall back to a caption.
	MinOCRChars int
	// Workers bounds how many images of one page are described concurrently.
	Workers int
	// SkipUndecodableImages drops images whose bytes cannot be extracted or
	// decoded instead of failing the page.
	SkipUndecodableImages bool
}

func DefaultConfig() Config {
	return Config{MinOCRChars: DefaultMinOCRChars, Workers: 4}
}

// PageExtractor turns one page of a PDF into plain text. It owns its OCR and
// captioning engines and is safe for concurrent use if they are.
type PageExtractor struct {
	open      LayoutOpener
	ocr       OCR
	captioner Captioner
	config    Config
}

// NewPageExtractor returns an extractor reading PDFs.
func NewPageExtractor(ocr OCR, captioner Captioner, config Config) *PageExtractor {
	return NewPageExtractorWithLayout(OpenPDF, ocr, captioner, config)
}

// NewPageExtractorWithLayout returns an extractor over any paginated layout.
func NewPageExtractorWithLayout(open LayoutOpener, ocr OCR, captioner Captioner, config Config) *PageExtractor {
	if config.MinOCRChars < 1 {
		config.MinOCRChars = DefaultMinOCRChars
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &PageExtractor{open: open, ocr: ocr, captioner: captioner, config: config}
}

// piece is one element of the page text: a text run or an image slot.
type piece struct {
	text    string
	image   int
	isImage bool
}

type segmentedPage struct {
	pieces []piece
	images []ExtractedImage
}

// rawText is the page text with a placeholder token in every image slot.
func (s *segmentedPage) rawText() string {
	parts := make([]string, 0, len(s.pieces))
	for _, p := range s.pieces {
		if p.isImage {
			parts = append(parts, s.images[p.image].Placeholder())
		} else {
			parts = append(parts, p.text)
		}
	}
	return strings.Join(parts, " ")
}

// resolve substitutes every image slot with its description. A nil
// description means the image was skipped and its slot disappears.
func (s *segmentedPage) resolve(descriptions []*ImageDescription) string {
	parts := make([]string, 0, len(s.pieces))
	for _, p := range s.pieces {
		if !p.isImage {
			parts = append(parts, p.text)
			continue
		}
		if d := descriptions[p.image]; d != nil {
			parts = append(parts, d.String())
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ExtractPage extracts the text of the 1-based page pageNumber of doc.
func (e *PageExtractor) ExtractPage(ctx context.Context, doc []byte, pageNumber int) (*PageExtractionResult, error) {
	logCtx := logging.Component("extractor").With().Int("pageNumber", pageNumber).Logger()

	layout, err := e.open(doc)
	if err != nil {
		return nil, documentDecodeError(pageNumber, "failed to open document", err)
	}
	total := layout.PageCount()
	if pageNumber < 1 || pageNumber > total {
		return nil, invalidPage(pageNumber, total)
	}

	blocks, err := layout.Blocks(pageNumber)
	if err != nil {
		return nil, documentDecodeError(pageNumber, "failed to read page content", err)
	}

	seg, err := e.segment(logCtx, pageNumber, blocks)
	if err != nil {
		logCtx.Error().Err(err).Msg("Page segmentation failed.")
		return nil, err
	}
	logCtx.Debug().Int("images", len(seg.images)).Str("rawText", seg.rawText()).Msg("Page segmented.")

	descriptions, err := e.describeAll(ctx, logCtx, pageNumber, seg.images)
	if err != nil {
		logCtx.Error().Err(err).Msg("Image description failed.")
		return nil, err
	}

	result := &PageExtractionResult{
		PageNumber: pageNumber,
		Text:       seg.resolve(descriptions),
	}
	for _, d := range descriptions {
		if d != nil {
			result.Images = append(result.Images, *d)
		}
	}
	logCtx.Info().Int("images", len(result.Images)).Int("chars", len(result.Text)).Msg("Page extracted.")
	return result, nil
}

// segment assigns image ids in content order and splits the page into pieces.
func (e *PageExtractor) segment(logCtx zerolog.Logger, pageNumber int, blocks []Block) (*segmentedPage, error) {
	seg := &segmentedPage{}
	imageCount := 0
	for _, b := range blocks {
		switch b.Kind {
		case TextBlock:
			for _, run := range b.Runs {
				if run = strings.TrimSpace(run); run != "" {
					seg.pieces = append(seg.pieces, piece{text: run})
				}
			}
		case ImageBlock:
			imageCount++
			id := imageID(pageNumber, imageCount)
			if b.Err != nil || len(b.Data) == 0 {
				cause := b.Err
				if cause == nil {
					cause = errors.New("image has no data")
				}
				if e.config.SkipUndecodableImages {
					logCtx.Warn().Err(cause).Str("imageId", id).Msg("Skipping image without extractable bytes.")
					continue
				}
				return nil, imageDecodeError(pageNumber, id, "failed to extract image bytes", cause)
			}
			seg.pieces = append(seg.pieces, piece{image: len(seg.images), isImage: true})
			seg.images = append(seg.images, ExtractedImage{ID: id, Data: b.Data, Format: b.Format})
		}
	}
	return seg, nil
}

// describeAll describes every image, at most config.Workers at a time.
// Results are indexed like images.
func (e *PageExtractor) describeAll(ctx context.Context, logCtx zerolog.Logger, pageNumber int, images []ExtractedImage) ([]*ImageDescription, error) {
	out := make([]*ImageDescription, len(images))
	if len(images) == 0 {
		return out, nil
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.config.Workers)
	for i, img := range images {
		eg.Go(func() error {
			d, err := e.describe(gctx, logCtx, pageNumber, img)
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *PageExtractor) describe(ctx context.Context, logCtx zerolog.Logger, pageNumber int, img ExtractedImage) (*ImageDescription, error) {
	decoded, err := decodeImage(img.Data, img.Format)
	if err != nil {
		if e.config.SkipUndecodableImages {
			logCtx.Warn().Err(err).Str("imageId", img.ID).Str("format", img.Format).Msg("Skipping undecodable image.")
			return nil, nil
		}
		return nil, imageDecodeError(pageNumber, img.ID, "failed to decode image", err)
	}

	text, err := e.ocr.Recognize(ctx, decoded)
	if err != nil {
		return nil, imageDescriptionError(pageNumber, img.ID, "OCR failed", err)
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) >= e.config.MinOCRChars {
		return &ImageDescription{ImageID: img.ID, Kind: Transcribed, Content: text}, nil
	}

	caption, err := e.captioner.Describe(ctx, decoded)
	if err != nil {
		return nil, imageDescriptionError(pageNumber, img.ID, "captioning failed", err)
	}
	logCtx.Debug().Str("imageId", img.ID).Int("ocrChars", utf8.RuneCountInString(text)).Msg("OCR too short, captioned instead.")
	return &ImageDescription{ImageID: img.ID, Kind: Captioned, Content: strings.TrimSpace(caption)}, nil
}
