package extraction

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/avelez/scoping-agent/internal/types"
)

// extractSpreadsheet reads every sheet of an .xlsx workbook in workbook
// order, one row per line with tab-separated cells.
func extractSpreadsheet(data []byte) (result, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return result{}, &CorruptDocumentError{
			Format:  string(types.FormatSpreadsheet),
			Message: "not a valid xlsx workbook",
			Cause:   err,
		}
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	res := result{meta: types.DocumentMetadata{SheetCount: intPtr(len(sheets))}}

	var sb strings.Builder
	totalRows := 0
	for _, sheet := range sheets {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			// One unreadable sheet degrades the document, the rest
			// still counts.
			res.partial = true
			continue
		}
		totalRows += len(rows)
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, c := range row {
				cells = append(cells, cellText(c))
			}
			sb.WriteString(strings.Join(cells, "\t"))
			sb.WriteByte('\n')
		}
	}
	res.text = sb.String()
	res.meta.RowCount = intPtr(totalRows)
	return res, nil
}
