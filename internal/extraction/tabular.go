package extraction

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"

	"github.com/avelez/scoping-agent/internal/types"
)

// extractTabular reads delimiter-separated files preserving row order. Cells
// carrying HTML fragments are reduced to their visible text so markup does
// not inflate word counts.
func extractTabular(path string, data []byte) (result, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		r.Comma = '\t'
	}

	rows, err := r.ReadAll()
	if err != nil {
		return result{}, &CorruptDocumentError{
			Format:  string(types.FormatTabular),
			Message: "failed to parse rows",
			Cause:   err,
		}
	}

	var sb strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(cellText(cell))
		}
		sb.WriteByte('\n')
	}

	return result{
		text: sb.String(),
		meta: types.DocumentMetadata{RowCount: intPtr(len(rows))},
	}, nil
}

// cellText strips HTML markup from a cell when it looks like a fragment.
func cellText(cell string) string {
	if strings.Contains(cell, "<") && strings.Contains(cell, ">") {
		return htmlToText(cell)
	}
	return cell
}
