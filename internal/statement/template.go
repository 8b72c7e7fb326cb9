package statement

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Template content for the downloadable sample statements. The columns
// mirror what the parser's auto-detection expects.
var (
	templateHeader = []string{"Fecha", "Descripcion", "Monto", "Referencia", "Cuenta"}

	templateRows = [][]string{
		{"2025-01-22", "PAGO TARJETA GETNET", "25000", "REF123456", "CUENTA-CORRIENTE-001"},
		{"2025-01-22", "TRANSFERENCIA RECIBIDA", "85000", "TRANS789", "CUENTA-CORRIENTE-001"},
		{"2025-01-21", "TRANSFERENCIA ENVIADA", "-45000", "PAY001", "CUENTA-CORRIENTE-001"},
		{"2025-01-21", "COMISION BANCO", "-2500", "", "CUENTA-CORRIENTE-001"},
	}
)

// WriteTemplateCSV writes the sample statement as CSV.
func WriteTemplateCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(templateHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range templateRows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// WriteTemplateXLSX writes the sample statement as a single-sheet
// workbook named "Cartola".
func WriteTemplateXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Cartola"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	all := append([][]string{templateHeader}, templateRows...)
	for i, row := range all {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell address for row %d: %w", i+1, err)
		}
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
