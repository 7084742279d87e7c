package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/example/flashdeck/pkg/models"
	"github.com/xuri/excelize/v2"
)

// Config defines how a workbook is read and written
type Config struct {
	SheetName   string // Sheet to read; the first sheet when empty
	HeaderCell  string // Top-left cell of the exported table
	ColumnWidth float64
}

// DefaultConfig returns the default workbook configuration
func DefaultConfig() Config {
	return Config{
		HeaderCell:  "A1",
		ColumnWidth: 24,
	}
}

// Row is one non-empty spreadsheet row with its 1-based row number
type Row struct {
	Number int
	Cells  []string
}

// ReadRows returns the non-empty rows of the configured sheet
func ReadRows(r io.Reader, config Config) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	out := make([]Row, 0, len(rows))
	for i, cells := range rows {
		if isBlank(cells) {
			continue
		}
		out = append(out, Row{Number: i + 1, Cells: cells})
	}
	return out, nil
}

// WriteEntries writes a header row followed by one row per entry
func WriteEntries(w io.Writer, entries []models.VocabularyEntry, config Config) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = "Sheet1"
	} else if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(config.HeaderCell)
	if err != nil {
		return fmt.Errorf("invalid header cell %q: %w", config.HeaderCell, err)
	}

	if err := writeRow(f, sheet, startCol, startRow, models.EntryColumns); err != nil {
		return err
	}
	for i, e := range entries {
		if err := writeRow(f, sheet, startCol, startRow+i+1, e.Row()); err != nil {
			return err
		}
	}

	// Bold header
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, startRow, startRow, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if config.ColumnWidth > 0 {
		first, _ := excelize.ColumnNumberToName(startCol)
		last, _ := excelize.ColumnNumberToName(startCol + len(models.EntryColumns) - 1)
		if err := f.SetColWidth(sheet, first, last, config.ColumnWidth); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, col, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
