package domain

// BlockKind identifies the rendering kind of a ContentBlock.
type BlockKind string

const (
	BlockTitle     BlockKind = "title"
	BlockTOC       BlockKind = "toc"
	BlockHeading   BlockKind = "heading"
	BlockParagraph BlockKind = "paragraph"
	BlockList      BlockKind = "list"
	BlockTable     BlockKind = "table"
	BlockImage     BlockKind = "image"
	BlockQuote     BlockKind = "quote"
	BlockCode      BlockKind = "code"
	BlockPageBreak BlockKind = "page_break"
	BlockRule      BlockKind = "rule"
)

// TOCEntry is one line of a table of contents, in document order.
type TOCEntry struct {
	Level int
	Text  string
}

// ContentBlock is one fully resolved renderable unit. It carries no
// placeholder tokens and no preset names; the Kind field decides which of
// the remaining fields are meaningful. The ordered block sequence is the
// sole contract between the section compiler and a backend.
type ContentBlock struct {
	Kind BlockKind

	Text     string
	Subtitle string
	Italic   bool

	Level int

	Items   []string
	Ordered bool

	Headers      []string
	Rows         [][]string
	ColumnWidths []float64

	ImageData []byte
	ImageRef  string
	Width     float64
	Height    float64
	Caption   string

	Attribution string
	Language    string

	Entries []TOCEntry
}

// CompiledDocument is the hand-off artifact a backend consumes: resolved
// style, resolved header/footer text, the block sequence, and optionally the
// raw bytes of a base container the output must be merged into.
type CompiledDocument struct {
	Title    string
	Author   string
	Header   string
	Footer   string
	Style    *ResolvedStyle
	Blocks   []ContentBlock
	Base     []byte
}
