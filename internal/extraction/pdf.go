package extraction

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/avelez/scoping-agent/internal/types"
)

// extractPDF reads the text layer of each page. Pages whose content streams
// cannot be decoded are skipped and the document is marked partial; scanned
// PDFs with no text layer surface as zero extractable words.
func extractPDF(data []byte) (res result, err error) {
	// The pdf library panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			res = result{}
			err = &CorruptDocumentError{
				Format:  string(types.FormatPageImage),
				Message: "malformed pdf structure",
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return result{}, &CorruptDocumentError{
			Format:  string(types.FormatPageImage),
			Message: "not a valid pdf",
			Cause:   err,
		}
	}

	pages := reader.NumPage()
	res = result{meta: types.DocumentMetadata{PageCount: intPtr(pages)}}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			res.partial = true
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			res.partial = true
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	res.text = sb.String()
	return res, nil
}
