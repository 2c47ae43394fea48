package export

import (
	"bytes"
	"fmt"
	"time"

	"diaries-qc/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// BuildWorkbook renders the given report shapes (all of them when none are named) as one
// XLSX workbook with a styled sheet per shape
func BuildWorkbook(report *models.Report, kinds ...models.ReportKind) ([]byte, error) {
	if len(kinds) == 0 {
		kinds = models.ReportKinds()
	}

	f := excelize.NewFile()
	// WriteTo needs the file open, so Close is called explicitly on every path

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, kind := range kinds {
		t, err := tableFor(report, kind)
		if err != nil {
			f.Close()
			return nil, err
		}
		index, err := f.NewSheet(t.sheet)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", t.sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}
		if err := writeSheet(f, t, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, t table, headerStyle int) error {
	for col, header := range t.headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(t.sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(t.sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, width := range t.widths {
		if i >= len(t.headers) {
			break
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(t.sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, cells := range t.rows {
		row := r + 2 // row 1 is the header
		for c, v := range cells {
			v = cellValue(v)
			if v == nil || v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(t.sheet, cell, v); err != nil {
				return fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, c+1, err)
			}
		}
	}

	if err := f.SetPanes(t.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}

// cellValue converts cells excelize cannot store natively
func cellValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case time.Time:
		return x.Format(timeLayout)
	default:
		return v
	}
}
