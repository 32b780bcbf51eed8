package extract

// BlockKind separates text segments from image segments of a page.
type BlockKind int

const (
	TextBlock BlockKind = iota + 1
	ImageBlock
)

// Block is one layout segment of a page, in content order.
// Text blocks carry Runs; image blocks carry the encoded image or, when the
// bytes could not be pulled out of the document, Err.
type Block struct {
	Kind   BlockKind
	Runs   []string
	Name   string
	Data   []byte
	Format string
	Err    error
}

// Layout is an opened document that yields the ordered blocks of its pages.
type Layout interface {
	PageCount() int
	Blocks(pageNumber int) ([]Block, error)
}

// LayoutOpener opens raw document bytes.
type LayoutOpener func(doc []byte) (Layout, error)
