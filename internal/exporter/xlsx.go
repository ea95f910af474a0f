// Package exporter writes the merged Littlefield dataset as an Excel
// workbook.
package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"lfcli/internal/dataprocessing"
)

// DefaultSheetName is the single sheet the workbook carries.
const DefaultSheetName = "data"

// Workbook writes rows into a single-sheet xlsx file: column A holds the day
// key, followed by the 19 metric columns and the derived Backlog column.
type Workbook struct {
	sheet string
}

// NewWorkbook returns a writer targeting the given sheet name.
func NewWorkbook(sheet string) *Workbook {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	return &Workbook{sheet: sheet}
}

// Write saves the table to path, overwriting any previous run's output.
func (w *Workbook) Write(path string, rows []dataprocessing.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", w.sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, 0, dataprocessing.SchemaWidth+2)
	header = append(header, "") // index column for the day key
	for _, label := range dataprocessing.ColumnHeaders {
		header = append(header, label)
	}
	header = append(header, "Backlog")
	if err := f.SetSheetRow(w.sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, row := range rows {
		cells := make([]interface{}, 0, len(header))
		cells = append(cells, row.Day)
		for _, value := range row.Values {
			cells = append(cells, value)
		}
		cells = append(cells, row.Backlog)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(w.sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row for day %v: %w", row.Day, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}
