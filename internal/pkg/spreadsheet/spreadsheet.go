// Package spreadsheet renders tabular exports as XLSX workbooks.
package spreadsheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Column struct {
	Header string
	Width  float64
}

// Table is one sheet: a header row followed by data rows.
type Table struct {
	Sheet   string
	Columns []Column
	Rows    [][]interface{}
	// Totals, when set, is written bold below the data.
	Totals []interface{}
}

// Render writes the tables into a single workbook, one sheet each.
func Render(tables ...Table) ([]byte, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("spreadsheet: no tables to render")
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E0E0E0"}},
	})
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: header style: %w", err)
	}

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Sheet); err != nil {
				return nil, fmt.Errorf("spreadsheet: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.Sheet); err != nil {
			return nil, fmt.Errorf("spreadsheet: new sheet %s: %w", t.Sheet, err)
		}
		if err := writeTable(f, t, bold); err != nil {
			return nil, err
		}
	}

	buf := new(bytes.Buffer)
	if _, err := f.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("spreadsheet: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, t Table, headerStyle int) error {
	for i, col := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(t.Sheet, cell, col.Header); err != nil {
			return fmt.Errorf("spreadsheet: header %s: %w", col.Header, err)
		}
		if col.Width > 0 {
			name, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(t.Sheet, name, name, col.Width); err != nil {
				return fmt.Errorf("spreadsheet: width %s: %w", col.Header, err)
			}
		}
	}
	if len(t.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err := f.SetCellStyle(t.Sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("spreadsheet: header style: %w", err)
		}
	}

	for r, row := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(t.Sheet, cell, &row); err != nil {
			return fmt.Errorf("spreadsheet: row %d: %w", r+2, err)
		}
	}

	if t.Totals != nil {
		rowNum := len(t.Rows) + 2
		first, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(t.Sheet, first, &t.Totals); err != nil {
			return fmt.Errorf("spreadsheet: totals: %w", err)
		}
		last, _ := excelize.CoordinatesToCellName(len(t.Totals), rowNum)
		if err := f.SetCellStyle(t.Sheet, first, last, headerStyle); err != nil {
			return fmt.Errorf("spreadsheet: totals style: %w", err)
		}
	}

	return f.SetPanes(t.Sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
