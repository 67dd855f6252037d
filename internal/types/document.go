package types

// Format is the closed set of supported document formats. The extractor
// dispatches on it; anything outside the set fails extraction for that
// document only.
type Format string

const (
	FormatTabular      Format = "tabular"
	FormatWordProc     Format = "word-processor"
	FormatPresentation Format = "presentation"
	FormatSpreadsheet  Format = "spreadsheet"
	FormatPageImage    Format = "page-image"
)

// ExtractionStatus describes how extraction of a single document went.
type ExtractionStatus string

const (
	ExtractionSuccess ExtractionStatus = "success"
	ExtractionPartial ExtractionStatus = "partial"
	ExtractionFailed  ExtractionStatus = "failed"
)

// DocumentMetadata holds structural facts about an extracted document.
// Counters use pointers: a format that has no notion of pages leaves PageCount
// nil rather than zero so downstream scoring is not biased by fake zeros.
type DocumentMetadata struct {
	PageCount  *int   `json:"page_count,omitempty"`
	SlideCount *int   `json:"slide_count,omitempty"`
	RowCount   *int   `json:"row_count,omitempty"`
	SheetCount *int   `json:"sheet_count,omitempty"`
	ImageCount *int   `json:"image_count,omitempty"`
	Language   string `json:"language,omitempty"`
	WordCount  int    `json:"word_count"`
	ByteSize   int    `json:"byte_size"`
}

// DocumentRecord is the immutable result of extracting one source document.
// It is owned by the job that produced it.
type DocumentRecord struct {
	Path     string           `json:"path"`
	Format   Format           `json:"format"`
	Text     string           `json:"-"`
	Metadata DocumentMetadata `json:"metadata"`
	Status   ExtractionStatus `json:"status"`
	Error    string           `json:"error,omitempty"`

	// Preprocessing flags surfaced for the PM: do-not-translate markers,
	// reviewer comments, tracked changes and the like.
	Flags []string `json:"flags,omitempty"`
}

// Extracted reports whether the document produced usable text.
func (d *DocumentRecord) Extracted() bool {
	return d.Status == ExtractionSuccess || d.Status == ExtractionPartial
}
