package reporting

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/avelez/scoping-agent/internal/types"
)

// renderPMWorkbook produces the PM-facing planning workbook: aggregate role
// hours and staffing only, no per-document detail.
func (g *Generator) renderPMWorkbook(spec types.JobSpec, est *types.JobEstimate) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Planning"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defaultIndex, _ := f.GetSheetIndex("Sheet1"); defaultIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	write(1, 1, "Job IDs")
	write(2, 1, sanitizeCell(strings.Join(spec.JobIDs, ", ")))
	write(1, 2, "Documents")
	write(2, 2, len(est.Documents))
	write(1, 3, "Total Words")
	write(2, 3, est.TotalWords)
	write(1, 4, "Complexity Score")
	write(2, 4, est.ComplexityScore)

	headers := []string{"Role", "Fraction", "Hours"}
	for i, h := range headers {
		write(i+1, 6, h)
	}
	row := 7
	for _, role := range types.Roles() {
		write(1, row, role)
		write(2, row, spec.Fraction(role))
		write(3, row, est.RoleHours.Get(role))
		row++
	}

	row++
	write(1, row, "Turnaround (hours)")
	write(2, row, est.TATHours)
	row++
	write(1, row, "Calendar Days")
	write(2, row, est.CalendarDays)
	row++
	write(1, row, "Translators Needed")
	write(2, row, est.Headcount.Translators)
	row++
	write(1, row, "Reviewers Needed")
	write(2, row, est.Headcount.Reviewers)

	_ = f.SetColWidth(sheet, "A", "A", 22)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "C", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
