package seed

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"elektropregled/internal/domain"
)

// Sheet names of the reference data workbook.
const (
	SheetFacilities = "postrojenje"
	SheetFields     = "polje"
	SheetTypes      = "vrstaUredjaja"
	SheetEquipment  = "uredjaj"
)

// EquipmentRow is a device as listed in the workbook; its type is referenced
// by code and resolved during import.
type EquipmentRow struct {
	ID           int64
	Label        string
	SerialNumber string
	FacilityID   int64
	FieldID      *int64
	TypeCode     string
}

// Workbook is the parsed content of the reference data workbook.
type Workbook struct {
	Facilities []domain.Facility
	Fields     []domain.Field
	Types      []domain.EquipmentType
	Equipment  []EquipmentRow
	// Warnings lists sheets that were missing or rows that were skipped.
	Warnings []string
}

// sheet is one worksheet addressed by header name.
type sheet struct {
	name   string
	header map[string]int
	rows   [][]string
}

func (s *sheet) cell(row []string, col string) string {
	i, ok := s.header[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (s *sheet) int64Cell(row []string, col string) (int64, error) {
	raw := s.cell(row, col)
	if raw == "" {
		return 0, fmt.Errorf("sheet %s: column %s is empty", s.name, col)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("sheet %s: column %s: invalid number %q", s.name, col, raw)
	}
	return int64(f), nil
}

func (s *sheet) floatCell(row []string, col string) (float64, error) {
	raw := s.cell(row, col)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("sheet %s: column %s: invalid number %q", s.name, col, raw)
	}
	return f, nil
}

func readSheet(f *excelize.File, name string) (*sheet, bool, error) {
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, false, nil
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	s := &sheet{name: name, header: map[string]int{}}
	if len(rows) == 0 {
		return s, true, nil
	}
	for i, h := range rows[0] {
		s.header[strings.TrimSpace(h)] = i
	}
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		s.rows = append(s.rows, row)
	}
	return s, true, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ReadWorkbook parses the four reference sheets. A missing sheet is reported
// as a warning and contributes no rows.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	sheets := map[string]*sheet{}
	for _, name := range []string{SheetFacilities, SheetFields, SheetTypes, SheetEquipment} {
		s, ok, err := readSheet(f, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			wb.Warnings = append(wb.Warnings, fmt.Sprintf("sheet %s not found", name))
			continue
		}
		sheets[name] = s
	}

	if s := sheets[SheetFacilities]; s != nil {
		for _, row := range s.rows {
			id, err := s.int64Cell(row, "id_postr")
			if err != nil {
				return nil, err
			}
			wb.Facilities = append(wb.Facilities, domain.Facility{
				ID:       id,
				TypeCode: s.cell(row, "ozn_vr_postr"),
				Name:     s.cell(row, "naz_postr"),
				Location: s.cell(row, "lokacija"),
			})
		}
	}

	if s := sheets[SheetFields]; s != nil {
		for _, row := range s.rows {
			id, err := s.int64Cell(row, "id_polje")
			if err != nil {
				return nil, err
			}
			facilityID, err := s.int64Cell(row, "id_postr")
			if err != nil {
				return nil, err
			}
			voltage, err := s.floatCell(row, "nap_razina")
			if err != nil {
				return nil, err
			}
			wb.Fields = append(wb.Fields, domain.Field{
				ID:           id,
				FacilityID:   facilityID,
				VoltageLevel: voltage,
				TypeCode:     s.cell(row, "ozn_vr_polje"),
				Name:         s.cell(row, "naz_polje"),
			})
		}
	}

	if s := sheets[SheetTypes]; s != nil {
		for _, row := range s.rows {
			code := s.cell(row, "ozn_vr_ured")
			if code == "" {
				continue
			}
			wb.Types = append(wb.Types, domain.EquipmentType{Code: code, Name: s.cell(row, "naz_vr_ured")})
		}
	}

	if s := sheets[SheetEquipment]; s != nil {
		for _, row := range s.rows {
			id, err := s.int64Cell(row, "id_ured")
			if err != nil {
				return nil, err
			}
			facilityID, err := s.int64Cell(row, "id_postr")
			if err != nil {
				return nil, err
			}
			e := EquipmentRow{
				ID:           id,
				Label:        s.cell(row, "natp_plocica"),
				SerialNumber: s.cell(row, "tv_broj"),
				FacilityID:   facilityID,
				TypeCode:     s.cell(row, "ozn_vr_ured"),
			}
			// a blank or non-numeric field puts the device directly on the facility
			if fieldID, err := s.int64Cell(row, "id_polje"); err == nil && fieldID != domain.NoField {
				e.FieldID = &fieldID
			}
			wb.Equipment = append(wb.Equipment, e)
		}
	}

	return wb, nil
}
