package domain

// SectionType identifies the kind of a section entry in a specification.
type SectionType string

const (
	SectionTypeSection        SectionType = "section"
	SectionTypeHeading        SectionType = "heading"
	SectionTypeContent        SectionType = "content"
	SectionTypeTable          SectionType = "table"
	SectionTypeImage          SectionType = "image"
	SectionTypeQuote          SectionType = "quote"
	SectionTypeCode           SectionType = "code"
	SectionTypePageBreak      SectionType = "page_break"
	SectionTypeHorizontalLine SectionType = "horizontal_line"
)

// SectionTypes lists every valid section type, in documentation order.
var SectionTypes = []SectionType{
	SectionTypeSection,
	SectionTypeHeading,
	SectionTypeContent,
	SectionTypeTable,
	SectionTypeImage,
	SectionTypeQuote,
	SectionTypeCode,
	SectionTypePageBreak,
	SectionTypeHorizontalLine,
}

// PageSizes lists the valid page size preset names.
var PageSizes = []string{"letter", "legal", "a4", "a5"}

// MarginPresets lists the valid margin preset names.
var MarginPresets = []string{"normal", "narrow", "moderate", "wide"}

// MarginSpec is either a named preset or an explicit four-sided measurement
// in inches. Exactly one form is populated.
type MarginSpec struct {
	Preset   string
	Explicit bool
	Top      float64
	Bottom   float64
	Left     float64
	Right    float64
}

// SectionSpec is one entry of a specification's section list. Only the
// fields meaningful to its Type are populated; the normalizer enforces that.
type SectionSpec struct {
	Type SectionType

	Title    string
	Subtitle string

	// Text uses a pointer so that an explicitly supplied empty string
	// (a blank line, common in letter boilerplate) is distinguishable
	// from an absent field.
	Text *string

	Level     int
	PageBreak bool

	Bullets  []string
	Numbered []string

	Headers      []string
	Data         [][]string
	ColumnWidths []float64

	Image   string
	Width   float64
	Height  float64
	Caption string

	Code     string
	Language string

	Author string
}

// Specification is the validated, normalized form of a user-authored
// document description. It is immutable after normalization; one instance
// serves exactly one compilation run.
type Specification struct {
	Title    string
	Subtitle string
	Author   string

	// Template is either the name of a built-in template or a reference
	// to a base document resolvable through the asset store.
	Template string

	PageSize string
	Margins  MarginSpec

	// PageSizeSet and MarginsSet record whether the fields were present
	// in the source document, so template-declared styles only fill the
	// gaps the author left open.
	PageSizeSet bool
	MarginsSet  bool

	Header string
	Footer string

	TableOfContents bool
	TitlePageBreak  bool

	Sections []SectionSpec

	Placeholders map[string]string
}

// DocumentInfo is the inspection report for an existing document.
type DocumentInfo struct {
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Created      string   `json:"created"`
	Modified     string   `json:"modified"`
	Paragraphs   int      `json:"paragraphs"`
	Tables       int      `json:"tables"`
	Sections     int      `json:"sections"`
	WordCount    int      `json:"word_count"`
	Styles       []string `json:"styles"`
	Placeholders []string `json:"placeholders"`
}
