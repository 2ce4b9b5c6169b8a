// Package output writes assembled reports to their sinks: an xlsx
// workbook and a JSON snapshot file. The sinks render the assembler's
// styling hints; they make no computation or validation decisions of
// their own.
package output

import (
	"fmt"

	"github.com/Harvard-ATG/canvas-lateness-tool/internal/report"
	"github.com/xuri/excelize/v2"
)

// sheetStyles holds the excelize style IDs for one workbook.
type sheetStyles struct {
	header int
	corner int
	late   int
	early  int
}

// WriteExcel renders the delta and lateness sheets into an xlsx
// workbook at path. Late deltas render in red, early or on-time deltas
// in blue, matching the styling hints set by the assembler.
func WriteExcel(path string, rep *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newSheetStyles(f)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}

	for _, sheet := range []report.Sheet{rep.DeltaSheet, rep.LatenessSheet} {
		if err := writeSheet(f, sheet, styles); err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet.Name, err)
		}
	}

	// Drop the workbook's default sheet; our two sheets replace it.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, err
	}
	if s.corner, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return s, err
	}
	if s.late, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "CC0000"}}); err != nil {
		return s, err
	}
	if s.early, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "0000CC"}}); err != nil {
		return s, err
	}
	return s, nil
}

func writeSheet(f *excelize.File, sheet report.Sheet, styles sheetStyles) error {
	if _, err := f.NewSheet(sheet.Name); err != nil {
		return err
	}

	for i, width := range sheet.ColWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		// Small padding so values don't touch the column edge.
		if err := f.SetColWidth(sheet.Name, col, col, width+2); err != nil {
			return err
		}
	}

	for r, row := range sheet.Rows {
		for c, cell := range row {
			if cell.Value == nil && cell.Style == report.StyleNone {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if cell.Value != nil {
				if err := f.SetCellValue(sheet.Name, ref, cell.Value); err != nil {
					return err
				}
			}
			if id, ok := styleID(styles, cell.Style); ok {
				if err := f.SetCellStyle(sheet.Name, ref, ref, id); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func styleID(styles sheetStyles, style report.CellStyle) (int, bool) {
	switch style {
	case report.StyleHeader:
		return styles.header, true
	case report.StyleCorner:
		return styles.corner, true
	case report.StyleLate:
		return styles.late, true
	case report.StyleEarly:
		return styles.early, true
	default:
		return 0, false
	}
}
