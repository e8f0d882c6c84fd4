package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/inventario/internal/csvtext"
	"github.com/JonMunkholm/inventario/internal/inventory"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by XLSX exports and preferred on import.
const SheetName = "Inventario"

// readWorkbook loads the inventory sheet of an XLSX upload as positioned rows.
// Line numbers are spreadsheet row numbers, which match what the admin sees.
func readWorkbook(r io.Reader, maxBytes int64) ([]inventory.Row, error) {
	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", csvtext.ErrFileTooLarge, maxBytes)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &inventory.FileError{Message: "No se pudo abrir el archivo Excel", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &inventory.FileError{Message: "El archivo Excel no tiene hojas"}
	}

	sheet := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, SheetName) {
			sheet = name
			break
		}
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, &inventory.FileError{Message: "No se pudo leer la hoja " + sheet, Err: err}
	}

	rows := make([]inventory.Row, len(cells))
	for i, fields := range cells {
		rows[i] = inventory.Row{Line: i + 1, Fields: fields}
	}
	return rows, nil
}

// renderWorkbook writes products as a single-sheet workbook with the same
// columns as the CSV export.
func renderWorkbook(products []inventory.Product) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, title := range inventory.ExportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, title); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		_ = f.SetCellStyle(SheetName, cell, cell, headerStyle)

		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, col, col, 18)
	}

	for r, row := range inventory.ExportRows(products) {
		for c, v := range row {
			value, ok := cellValue(v)
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(SheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write row %d: %w", r+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// cellValue maps an export value to a typed spreadsheet cell. Null cells are
// left empty.
func cellValue(v csvtext.Value) (any, bool) {
	switch x := v.(type) {
	case csvtext.String:
		return string(x), true
	case csvtext.Number:
		return float64(x), true
	case csvtext.Bool:
		return bool(x), true
	case csvtext.Null, nil:
		return nil, false
	default:
		return csvtext.Text(v), true
	}
}
