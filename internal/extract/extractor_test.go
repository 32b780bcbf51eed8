package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLayout struct {
	pages     [][]Block
	blocksErr error
}

func (f *fakeLayout) PageCount() int { return len(f.pages) }

func (f *fakeLayout) Blocks(pageNumber int) ([]Block, error) {
	if f.blocksErr != nil {
		return nil, f.blocksErr
	}
	return f.pages[pageNumber-1], nil
}

func openFake(l *fakeLayout) LayoutOpener {
	return func([]byte) (Layout, error) { return l, nil }
}

// fakeOCR answers by the red channel of the top-left pixel.
type fakeOCR struct {
	mu    sync.Mutex
	texts map[uint8]string
	err   error
	calls int
}

func (f *fakeOCR) Recognize(_ context.Context, img image.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	r, _, _, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	return f.texts[uint8(r>>8)], nil
}

type fakeCaptioner struct {
	mu      sync.Mutex
	caption string
	err     error
	calls   int
}

func (f *fakeCaptioner) Describe(context.Context, image.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.caption, f.err
}

func solidPNG(t *testing.T, red uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: red, G: 10, B: 10, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func text(runs ...string) Block {
	return Block{Kind: TextBlock, Runs: runs}
}

func picture(data []byte) Block {
	return Block{Kind: ImageBlock, Data: data, Format: "png"}
}

func TestExtractPage_TextAndEquation(t *testing.T) {
	layout := &fakeLayout{pages: [][]Block{{
		text("Newton's Law:"),
		picture(solidPNG(t, 1)),
	}}}
	ocr := &fakeOCR{texts: map[uint8]string{1: "F = m a"}}
	captioner := &fakeCaptioner{caption: "unused"}
	e := NewPageExtractorWithLayout(openFake(layout), ocr, captioner, Config{MinOCRChars: 7})

	res, err := e.ExtractPage(context.Background(), []byte("doc"), 1)
	require.NoError(t, err)
	assert.Equal(t, "Newton's Law: (Equation/Text in Image: F = m a)", res.Text)
	assert.Equal(t, 1, res.PageNumber)
	require.Len(t, res.Images, 1)
	assert.Equal(t, "page1_img1", res.Images[0].ImageID)
	assert.Equal(t, Transcribed, res.Images[0].Kind)
	assert.Zero(t, captioner.calls)
}

func TestExtractPage_OCRThreshold(t *testing.T) {
	tests := []struct {
		name     string
		ocrText  string
		wantKind DescriptionKind
		wantText string
	}{
		{"eight chars captions", "12345678", Captioned, "(Image Description: a diagram)"},
		{"nine chars transcribes", "123456789", Transcribed, "(Equation/Text in Image: 123456789)"},
		{"whitespace trimmed before counting", "  12345678  \n", Captioned, "(Image Description: a diagram)"},
		{"empty ocr captions", "", Captioned, "(Image Description: a diagram)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := &fakeLayout{pages: [][]Block{{picture(solidPNG(t, 5))}}}
			ocr := &fakeOCR{texts: map[uint8]string{5: tt.ocrText}}
			captioner := &fakeCaptioner{caption: " a diagram "}
			e := NewPageExtractorWithLayout(openFake(layout), ocr, captioner, DefaultConfig())

			res, err := e.ExtractPage(context.Background(), nil, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, res.Text)
			require.Len(t, res.Images, 1)
			assert.Equal(t, tt.wantKind, res.Images[0].Kind)
		})
	}
}

func TestExtractPage_OrderPreserved(t *testing.T) {
	layout := &fakeLayout{pages: [][]Block{
		{text("cover")},
		{
			text("first paragraph"),
			picture(solidPNG(t, 1)),
			text("second", "paragraph"),
			picture(solidPNG(t, 2)),
		},
	}}
	ocr := &fakeOCR{texts: map[uint8]string{1: "alpha beta gamma", 2: "x"}}
	captioner := &fakeCaptioner{caption: "a graph"}
	e := NewPageExtractorWithLayout(openFake(layout), ocr, captioner, Config{Workers: 2})

	res, err := e.ExtractPage(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Equal(t,
		"first paragraph (Equation/Text in Image: alpha beta gamma) second paragraph (Image Description: a graph)",
		res.Text)
	require.Len(t, res.Images, 2)
	assert.Equal(t, "page2_img1", res.Images[0].ImageID)
	assert.Equal(t, "page2_img2", res.Images[1].ImageID)
	assert.NotContains(t, res.Text, "[IMAGE_")
}

func TestExtractPage_NoImages(t *testing.T) {
	layout := &fakeLayout{pages: [][]Block{{
		text("  Chapter 1 ", "", "   "),
		text("Motion is relative.  "),
	}}}
	ocr := &fakeOCR{}
	e := NewPageExtractorWithLayout(openFake(layout), ocr, &fakeCaptioner{}, DefaultConfig())

	res, err := e.ExtractPage(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "Chapter 1 Motion is relative.", res.Text)
	assert.Empty(t, res.Images)
	assert.Zero(t, ocr.calls)
}

func TestExtractPage_EmptyPage(t *testing.T) {
	layout := &fakeLayout{pages: [][]Block{{}}}
	e := NewPageExtractorWithLayout(openFake(layout), &fakeOCR{}, &fakeCaptioner{}, DefaultConfig())

	res, err := e.ExtractPage(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "", res.Text)
}

func TestExtractPage_InvalidPageNumber(t *testing.T) {
	layout := &fakeLayout{pages: [][]Block{{text("a")}, {text("b")}}}
	e := NewPageExtractorWithLayout(openFake(layout), &fakeOCR{}, &fakeCaptioner{}, DefaultConfig())

	for _, page := range []int{-1, 0, 3, 100} {
		res, err := e.ExtractPage(context.Background(), nil, page)
		assert.Nil(t, res)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidPageNumber)
		assert.Equal(t, KindInvalidPageNumber, KindOf(err))
	}
}

func TestExtractPage_DocumentDecode(t *testing.T) {
	openErr := errors.New("not a pdf")
	failing := func([]byte) (Layout, error) { return nil, openErr }
	e := NewPageExtractorWithLayout(failing, &fakeOCR{}, &fakeCaptioner{}, DefaultConfig())

	_, err := e.ExtractPage(context.Background(), nil, 1)
	assert.ErrorIs(t, err, ErrDocumentDecode)
	assert.ErrorIs(t, err, openErr)

	broken := &fakeLayout{pages: [][]Block{{}}, blocksErr: errors.New("bad stream")}
	e = NewPageExtractorWithLayout(openFake(broken), &fakeOCR{}, &fakeCaptioner{}, DefaultConfig())
	_, err = e.ExtractPage(context.Background(), nil, 1)
	assert.Equal(t, KindDocumentDecode, KindOf(err))
}

func TestExtractPage_UndecodableImage(t *testing.T) {
	blocks := func() []Block {
		return []Block{
			text("before"),
			picture([]byte("not an image")),
			{Kind: ImageBlock, Err: errors.New("stream missing")},
			picture(solidPNG(t, 3)),
			text("after"),
		}
	}
	ocr := &fakeOCR{texts: map[uint8]string{3: "E = mc^2 holds"}}

	t.Run("fails page by default", func(t *testing.T) {
		layout := &fakeLayout{pages: [][]Block{blocks()}}
		e := NewPageExtractorWithLayout(openFake(layout), ocr, &fakeCaptioner{}, DefaultConfig())

		res, err := e.ExtractPage(context.Background(), nil, 1)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrImageDecode)
		assert.ErrorIs(t, err, ErrDocumentDecode)

		var ee *ExtractionError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "page1_img2", ee.ImageID)
	})

	t.Run("skip policy keeps numbering", func(t *testing.T) {
		layout := &fakeLayout{pages: [][]Block{blocks()}}
		e := NewPageExtractorWithLayout(openFake(layout), ocr, &fakeCaptioner{},
			Config{SkipUndecodableImages: true})

		res, err := e.ExtractPage(context.Background(), nil, 1)
		require.NoError(t, err)
		assert.Equal(t, "before (Equation/Text in Image: E = mc^2 holds) after", res.Text)
		require.Len(t, res.Images, 1)
		assert.Equal(t, "page1_img3", res.Images[0].ImageID)
	})
}

func TestExtractPage_EngineFailures(t *testing.T) {
	layout := &fakeLayout{pages: [][]Block{{picture(solidPNG(t, 9))}}}
	engineErr := errors.New("engine down")

	e := NewPageExtractorWithLayout(openFake(layout), &fakeOCR{err: engineErr}, &fakeCaptioner{}, DefaultConfig())
	_, err := e.ExtractPage(context.Background(), nil, 1)
	assert.ErrorIs(t, err, ErrImageDescription)
	assert.ErrorIs(t, err, engineErr)

	e = NewPageExtractorWithLayout(openFake(layout), &fakeOCR{}, &fakeCaptioner{err: engineErr}, DefaultConfig())
	_, err = e.ExtractPage(context.Background(), nil, 1)
	assert.ErrorIs(t, err, ErrImageDescription)
	assert.NotErrorIs(t, err, ErrDocumentDecode)
}

func TestExtractPage_ManyImagesConcurrently(t *testing.T) {
	var page []Block
	texts := map[uint8]string{}
	for i := 1; i <= 12; i++ {
		page = append(page, picture(solidPNG(t, uint8(i))))
		texts[uint8(i)] = strings.Repeat("x", i)
	}
	layout := &fakeLayout{pages: [][]Block{page}}
	captioner := &fakeCaptioner{caption: "short"}
	e := NewPageExtractorWithLayout(openFake(layout), &fakeOCR{texts: texts}, captioner, Config{Workers: 3})

	res, err := e.ExtractPage(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Len(t, res.Images, 12)
	for i, img := range res.Images {
		assert.Equal(t, imageID(1, i+1), img.ImageID)
	}
	assert.Equal(t, 8, captioner.calls)
	assert.NotContains(t, res.Text, "[IMAGE_")
}

func TestImageDescription_String(t *testing.T) {
	assert.Equal(t, "(Equation/Text in Image: a+b)", ImageDescription{Kind: Transcribed, Content: "a+b"}.String())
	assert.Equal(t, "(Image Description: a cat)", ImageDescription{Kind: Captioned, Content: "a cat"}.String())
	assert.Equal(t, "[IMAGE_PAGE3_IMG12]", ExtractedImage{ID: imageID(3, 12)}.Placeholder())
}

func TestDecodeImage(t *testing.T) {
	img, err := decodeImage(solidPNG(t, 200), "png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())

	_, err = decodeImage(nil, "png")
	assert.Error(t, err)
	_, err = decodeImage([]byte{0, 1, 2}, "jpx")
	assert.ErrorContains(t, err, "unsupported")
}

func TestDecodeImage_FlattensTransparency(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := decodeImage(buf.Bytes(), "png")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(0, 0))
}
