package domain

import "context"

// SourceFormat tags raw specification text as YAML or JSON.
type SourceFormat string

const (
	FormatYAML SourceFormat = "yaml"
	FormatJSON SourceFormat = "json"
)

// Output format names accepted by the generator.
const (
	OutputDOCX = "docx"
	OutputPDF  = "pdf"
)

// GenerateOptions carries call-boundary inputs for one generation run.
type GenerateOptions struct {
	// Format selects the backend; empty means OutputDOCX.
	Format string

	// Variables are merged over the specification's own placeholder
	// mapping; on key collision the call-supplied value wins.
	Variables map[string]string

	// BaseDocument, when non-nil, is an already-fetched base container
	// the compiled blocks are appended to. It takes precedence over the
	// specification's template reference.
	BaseDocument []byte

	// Overrides are explicit numeric style overrides, the highest
	// precedence layer of style resolution.
	Overrides *StyleOverrides
}

// Output is the result of one generation run.
type Output struct {
	Filename    string
	ContentType string
	Data        []byte

	// OpenPlaceholders lists tokens that had no replacement at
	// generation time and were left verbatim in the document.
	OpenPlaceholders []string
}

// BatchItem pairs one specification with the filename its output takes in
// the batch archive.
type BatchItem struct {
	Spec     map[string]any `json:"spec"`
	Filename string         `json:"filename"`
}

// BatchResult reports a finished batch: the archive bytes, the filenames
// that succeeded, and one BatchItemError per failed item.
type BatchResult struct {
	Archive   []byte
	Succeeded []string
	Failed    []*BatchItemError
}

// TemplateInfo describes one built-in template for listings.
type TemplateInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PageSize    string `json:"page_size"`
}

// Generator runs the full pipeline: normalize, resolve style, substitute
// placeholders, compile sections, merge, render.
type Generator interface {
	GenerateSpec(ctx context.Context, spec *Specification, opts GenerateOptions) (*Output, error)
	GenerateSource(ctx context.Context, source []byte, format SourceFormat, opts GenerateOptions) (*Output, error)
}

// Inspector reports metadata and statistics for an existing document.
type Inspector interface {
	Inspect(data []byte) (*DocumentInfo, error)
}

// Rewriter performs document-time placeholder substitution on an existing
// document, returning the rewritten bytes and the replacement count.
type Rewriter interface {
	Replace(data []byte, vars map[string]string) ([]byte, int, error)
}

// BatchRunner executes independent generations and archives the results.
// A failing item never aborts its siblings.
type BatchRunner interface {
	Run(ctx context.Context, items []BatchItem) (*BatchResult, error)
}

// AssetStore supplies base templates and image byte streams. Fetch failures
// surface as *ResourceError.
type AssetStore interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Backend turns a compiled document into persisted container bytes.
type Backend interface {
	ContentType() string
	FileExtension() string
	Render(doc *CompiledDocument) ([]byte, error)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetTemplatePath() string
	GetMaxSpecSize() int64
	GetMaxBatchWorkers() int
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetAssetBucket() string
}
