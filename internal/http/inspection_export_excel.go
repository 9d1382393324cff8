package httpapi

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"elektropregled/internal/domain"
)

const exportSheet = "Pregledi"

// InspectionExportHeader is the header row of the history export.
var InspectionExportHeader = []string{
	"ID pregleda",
	"Lokalni ID",
	"Početak",
	"Kraj",
	"Korisnik",
	"Natpisna pločica",
	"Tvornički broj",
	"Parametar",
	"Tip",
	"Vrijednost",
	"Jedinica",
	"Napomena",
	"Vrijeme unosa",
}

var exportColumnWidths = []float64{12, 38, 20, 20, 16, 20, 20, 28, 10, 24, 10, 30, 20}

const exportTimeLayout = "2006-01-02 15:04:05"

// GenerateInspectionExport renders the history rows into an XLSX workbook.
func GenerateInspectionExport(rows []domain.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range InspectionExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(exportSheet, name, name, exportColumnWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, r := range rows {
		end := ""
		if r.End != nil {
			end = r.End.Format(exportTimeLayout)
		}
		var value any = r.Value.String()
		if n, ok := r.Value.Number(); ok {
			value = n
		}
		values := []any{
			r.InspectionID,
			r.InspectionLID.String(),
			r.Start.Format(exportTimeLayout),
			end,
			r.Username,
			r.EquipmentLabel,
			r.SerialNumber,
			r.ParameterName,
			string(r.Kind),
			value,
			r.Unit,
			r.Note,
			r.EnteredAt.Format(exportTimeLayout),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
