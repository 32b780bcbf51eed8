package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	// Form XObjects may nest; deeper forms are ignored.
	maxFormDepth = 8

	// TJ adjustments below this (thousandths of text space) read as a word gap.
	tjWordGap = -250

	inlineImageName = "inline"
)

var disableConfigDir sync.Once

func pdfcpuConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount validates doc and returns its number of pages.
func PageCount(doc []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(doc), pdfcpuConfig())
	if err != nil {
		return 0, documentDecodeError(0, "failed to count pages", err)
	}
	return n, nil
}

type pdfLayout struct {
	data   []byte
	reader *pdf.Reader

	once    sync.Once
	images  *imageSource
	readErr error
}

// OpenPDF opens PDF bytes for block segmentation. Text and drawing order come
// from the page content streams; image bytes come from pdfcpu.
func OpenPDF(doc []byte) (l Layout, err error) {
	if len(doc) == 0 {
		return nil, errors.New("empty document")
	}
	defer func() {
		if r := recover(); r != nil {
			l, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, err
	}
	return &pdfLayout{data: doc, reader: reader}, nil
}

func (l *pdfLayout) PageCount() (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return l.reader.NumPage()
}

func (l *pdfLayout) Blocks(pageNumber int) (blocks []Block, err error) {
	defer func() {
		if r := recover(); r != nil {
			blocks, err = nil, fmt.Errorf("malformed page content: %v", r)
		}
	}()

	page := l.reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d has no page object", pageNumber)
	}

	w := &contentWalker{enc: rawEncoding{}}
	if err := w.walk(page.V.Key("Contents"), page.Resources(), nil, 0); err != nil {
		return nil, err
	}
	blocks = w.finish()

	if len(w.refs) > 0 {
		l.attachImages(pageNumber, blocks, w.refs)
	}
	return blocks, nil
}

// attachImages fills the bytes of every image block. Failures are recorded on
// their own block so the extractor can apply its image policy per image.
func (l *pdfLayout) attachImages(pageNumber int, blocks []Block, refs []imageRef) {
	l.once.Do(func() {
		l.images, l.readErr = newImageSource(l.data)
	})
	for _, ref := range refs {
		b := &blocks[ref.block]
		if l.readErr != nil {
			b.Err = l.readErr
			continue
		}
		img, err := l.images.image(pageNumber, ref)
		if err != nil {
			b.Err = err
			continue
		}
		b.Data, b.Format = img.data, img.format
	}
}

type rawImage struct {
	data   []byte
	format string
}

// imageRef locates the bytes of one image block: either a chain of XObject
// resource names starting at the page resources, or an inline image.
type imageRef struct {
	block  int
	path   []string
	inline *inlineImage
}

// imageSource pulls single images out of a document parsed by pdfcpu.
type imageSource struct {
	ctx *model.Context
}

func newImageSource(doc []byte) (*imageSource, error) {
	ctx, err := api.ReadAndValidate(bytes.NewReader(doc), pdfcpuConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to read document images: %w", err)
	}
	return &imageSource{ctx: ctx}, nil
}

func (s *imageSource) image(pageNumber int, ref imageRef) (img rawImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed image: %v", r)
		}
	}()

	if ref.inline != nil {
		sd, err := ref.inline.streamDict()
		if err != nil {
			return rawImage{}, err
		}
		return s.extract(sd, inlineImageName, 0)
	}
	sd, objNr, err := s.xobject(pageNumber, ref.path)
	if err != nil {
		return rawImage{}, err
	}
	return s.extract(sd, ref.path[len(ref.path)-1], objNr)
}

// xobject follows path from the page resources through nested form
// resources. A form without resources uses those of its parent.
func (s *imageSource) xobject(pageNumber int, path []string) (*types.StreamDict, int, error) {
	_, _, inherited, err := s.ctx.PageDict(pageNumber, false)
	if err != nil {
		return nil, 0, err
	}
	if inherited == nil || inherited.Resources == nil {
		return nil, 0, fmt.Errorf("page %d has no resources", pageNumber)
	}
	resources := inherited.Resources
	where := fmt.Sprintf("page %d", pageNumber)

	var (
		sd    *types.StreamDict
		objNr int
	)
	for i, name := range path {
		if i > 0 {
			if o, found := sd.Find("Resources"); found {
				d, err := s.ctx.DereferenceDict(o)
				if err != nil {
					return nil, 0, err
				}
				if d != nil {
					resources = d
				}
			}
		}
		xobjects, err := s.ctx.DereferenceDict(resources["XObject"])
		if err != nil {
			return nil, 0, err
		}
		o, found := xobjects.Find(name)
		if !found {
			return nil, 0, fmt.Errorf("image resource %q not found in %s", name, where)
		}
		objNr = 0
		if ref, ok := o.(types.IndirectRef); ok {
			objNr = ref.ObjectNumber.Value()
		}
		if sd, _, err = s.ctx.DereferenceStreamDict(o); err != nil {
			return nil, 0, err
		}
		if sd == nil {
			return nil, 0, fmt.Errorf("image resource %q in %s is null", name, where)
		}
		where = fmt.Sprintf("form %q", name)
	}
	return sd, objNr, nil
}

func (s *imageSource) extract(sd *types.StreamDict, name string, objNr int) (rawImage, error) {
	img, err := pdfcpu.ExtractImage(s.ctx, sd, false, name, objNr, false)
	if err != nil {
		return rawImage{}, fmt.Errorf("failed to extract image %s: %w", name, err)
	}
	// pdfcpu returns no reader for color spaces and filters it cannot render.
	if img == nil || img.Reader == nil {
		cs, _ := pdfcpu.ColorSpaceString(s.ctx, sd)
		return rawImage{}, fmt.Errorf("image %s: unsupported color space %q or filter", name, cs)
	}
	data, err := io.ReadAll(img)
	if err != nil {
		return rawImage{}, fmt.Errorf("failed to read image %s: %w", name, err)
	}
	return rawImage{data: data, format: img.FileType}, nil
}

// rawEncoding is used until the content stream selects a font.
type rawEncoding struct{}

func (rawEncoding) Decode(raw string) string { return raw }

// contentWalker turns content stream operators into text and image blocks.
// A text run ends at every text positioning operator; an image closes the
// current text block.
type contentWalker struct {
	blocks []Block
	refs   []imageRef
	runs   []string
	run    strings.Builder
	enc    pdf.TextEncoding
}

func (w *contentWalker) walk(contents, resources pdf.Value, path []string, depth int) error {
	switch contents.Kind() {
	case pdf.Array:
		for i := 0; i < contents.Len(); i++ {
			if err := w.walk(contents.Index(i), resources, path, depth); err != nil {
				return err
			}
		}
		return nil
	case pdf.Stream:
	default:
		return nil
	}

	rc := contents.Reader()
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("failed to read content stream: %w", err)
	}

	sc := &contentScanner{data: data}
	var operands []any
	for {
		v, err := sc.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		op, ok := v.(pdfKeyword)
		if !ok {
			operands = append(operands, v)
			continue
		}
		if err := w.apply(sc, string(op), operands, resources, path, depth); err != nil {
			return err
		}
		operands = operands[:0]
	}
}

func (w *contentWalker) apply(sc *contentScanner, op string, operands []any, resources pdf.Value, path []string, depth int) error {
	last := func() any {
		if len(operands) == 0 {
			return nil
		}
		return operands[len(operands)-1]
	}
	switch op {
	case "Tf":
		if len(operands) == 2 {
			if name, ok := operands[0].(pdfName); ok {
				w.enc = fontEncoding(resources, string(name))
			}
		}
	case "Tj":
		w.show(last())
	case "TJ":
		w.showArray(last())
	case "'", "\"":
		w.endRun()
		w.show(last())
	case "BT", "ET", "Td", "TD", "T*", "Tm":
		w.endRun()
	case "Do":
		if name, ok := last().(pdfName); ok {
			return w.do(resources, string(name), path, depth)
		}
	case "BI":
		img, err := sc.inlineImage()
		if err != nil {
			return err
		}
		w.image(inlineImageName, imageRef{inline: img})
	}
	return nil
}

func (w *contentWalker) do(resources pdf.Value, name string, path []string, depth int) error {
	xobj := resources.Key("XObject").Key(name)
	// Copy so sibling forms do not share a backing array.
	sub := append(append([]string(nil), path...), name)
	switch xobj.Key("Subtype").Name() {
	case "Image":
		w.image(name, imageRef{path: sub})
	case "Form":
		if depth >= maxFormDepth {
			return nil
		}
		formResources := xobj.Key("Resources")
		if formResources.IsNull() {
			formResources = resources
		}
		enc := w.enc
		err := w.walk(xobj, formResources, sub, depth+1)
		w.enc = enc
		return err
	}
	return nil
}

func (w *contentWalker) image(name string, ref imageRef) {
	w.endText()
	ref.block = len(w.blocks)
	w.blocks = append(w.blocks, Block{Kind: ImageBlock, Name: name})
	w.refs = append(w.refs, ref)
}

func (w *contentWalker) show(s any) {
	if str, ok := s.(pdfString); ok {
		w.run.WriteString(w.enc.Decode(string(str)))
	}
}

func (w *contentWalker) showArray(arr any) {
	items, ok := arr.(pdfArray)
	if !ok {
		return
	}
	for _, v := range items {
		switch v := v.(type) {
		case pdfString:
			w.run.WriteString(w.enc.Decode(string(v)))
		case float64:
			if v < tjWordGap {
				w.run.WriteByte(' ')
			}
		}
	}
}

func (w *contentWalker) endRun() {
	if s := strings.TrimSpace(w.run.String()); s != "" {
		w.runs = append(w.runs, s)
	}
	w.run.Reset()
}

func (w *contentWalker) endText() {
	w.endRun()
	if len(w.runs) > 0 {
		w.blocks = append(w.blocks, Block{Kind: TextBlock, Runs: w.runs})
		w.runs = nil
	}
}

func (w *contentWalker) finish() []Block {
	w.endText()
	return w.blocks
}

func fontEncoding(resources pdf.Value, name string) pdf.TextEncoding {
	font := resources.Key("Font").Key(name)
	if font.IsNull() {
		return rawEncoding{}
	}
	return pdf.Font{V: font}.Encoder()
}
