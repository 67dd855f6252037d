// Package extraction turns raw document bytes into DocumentRecords: plain
// text in reading order plus structural metadata. Extraction failures are
// per-document and are reported inside the record, never to the caller.
package extraction

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/avelez/scoping-agent/internal/types"
)

// formatByExt maps file extensions to the closed format set.
var formatByExt = map[string]types.Format{
	".csv":  types.FormatTabular,
	".tsv":  types.FormatTabular,
	".docx": types.FormatWordProc,
	".pptx": types.FormatPresentation,
	".xlsx": types.FormatSpreadsheet,
	".pdf":  types.FormatPageImage,
}

// DetectFormat infers the document format from the file extension.
func DetectFormat(path string) (types.Format, bool) {
	f, ok := formatByExt[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// nonTranslatablePatterns flag text the linguists must not touch. Matches are
// surfaced as preprocessing flags on the record.
var nonTranslatablePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)do not translate`),
	regexp.MustCompile(`(?i)do not locali[sz]e`),
	regexp.MustCompile(`(?i)not for locali[sz]ation`),
	regexp.MustCompile(`(?i)not for translation`),
}

// result is the intermediate output of one format-specific extractor.
type result struct {
	text    string
	partial bool
	meta    types.DocumentMetadata
	flags   []string
}

// Extractor produces DocumentRecords from raw bytes.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract produces the DocumentRecord for one document. It never returns an
// error: unsupported or corrupt input yields a record with status "failed"
// and a populated error detail.
func (e *Extractor) Extract(path string, data []byte) types.DocumentRecord {
	rec := types.DocumentRecord{Path: path}

	format, ok := DetectFormat(path)
	if !ok {
		rec.Status = types.ExtractionFailed
		rec.Error = (&UnsupportedFormatError{Path: path}).Error()
		rec.Metadata.ByteSize = len(data)
		e.logger.Warn("extraction.unsupported", "path", path)
		return rec
	}
	rec.Format = format

	var res result
	var err error
	switch format {
	case types.FormatTabular:
		res, err = extractTabular(path, data)
	case types.FormatWordProc:
		res, err = extractWordProcessor(data)
	case types.FormatPresentation:
		res, err = extractPresentation(data)
	case types.FormatSpreadsheet:
		res, err = extractSpreadsheet(data)
	case types.FormatPageImage:
		res, err = extractPDF(data)
	}

	rec.Metadata = res.meta
	rec.Metadata.ByteSize = len(data)
	rec.Flags = res.flags

	if err != nil {
		rec.Status = types.ExtractionFailed
		rec.Error = err.Error()
		e.logger.Warn("extraction.failed", "path", path, "format", format, "err", err)
		return rec
	}

	rec.Text = normalizeText(res.text)
	rec.Metadata.WordCount = len(strings.Fields(rec.Text))
	rec.Metadata.Language = detectLanguage(rec.Text)
	rec.Flags = append(rec.Flags, translationFlags(rec.Text)...)

	switch {
	case rec.Metadata.WordCount == 0:
		rec.Status = types.ExtractionPartial
		rec.Flags = append(rec.Flags, "no extractable text")
	case res.partial:
		rec.Status = types.ExtractionPartial
	default:
		rec.Status = types.ExtractionSuccess
	}

	e.logger.Info("extraction.ok",
		"path", path,
		"format", format,
		"status", rec.Status,
		"words", rec.Metadata.WordCount,
		"language", rec.Metadata.Language,
	)
	return rec
}

// normalizeText strips blank lines and trailing whitespace while preserving
// reading order.
func normalizeText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// detectLanguage returns the ISO 639-3 code of the dominant language, or
// empty when the text is too short to call.
func detectLanguage(text string) string {
	if len(strings.Fields(text)) < 3 {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return whatlanggo.LangToString(info.Lang)
}

// translationFlags scans extracted text for do-not-translate markers.
func translationFlags(text string) []string {
	for _, pat := range nonTranslatablePatterns {
		if pat.MatchString(text) {
			return []string{"contains do-not-translate instructions"}
		}
	}
	return nil
}

func intPtr(v int) *int { return &v }
