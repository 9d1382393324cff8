package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"elektropregled/internal/domain"
	"elektropregled/internal/repository"
)

// FacilityService serves the reference data the mobile client browses before
// an inspection: facilities, their fields and the per-field checklist.
type FacilityService interface {
	ListFacilities(ctx context.Context) ([]FacilitySummaryDTO, error)
	ListFields(ctx context.Context, facilityID int64) ([]FieldDTO, error)
	// BuildChecklist returns the checklist of every device in a field.
	// fieldID nil is a validation error; domain.NoField selects equipment
	// placed directly on the facility.
	BuildChecklist(ctx context.Context, facilityID int64, fieldID *int64) ([]DeviceChecklistDTO, error)
	// InspectionHistory returns every recorded item of the facility, newest
	// inspection first.
	InspectionHistory(ctx context.Context, facilityID int64) ([]domain.ExportRow, error)
}

// FacilitySummaryDTO is a facility with its inspection statistics.
type FacilitySummaryDTO struct {
	ID             int64      `json:"idPostr"`
	Name           string     `json:"nazPostr"`
	Location       *string    `json:"lokacija"`
	TypeCode       string     `json:"oznVrPostr"`
	Inspections    int64      `json:"totalPregleda"`
	LastInspection *time.Time `json:"zadnjiPregled"`
	LastInspector  *string    `json:"zadnjiKorisnik"`
}

// FieldDTO is a field with its equipment count. The fieldless row has a nil ID.
type FieldDTO struct {
	ID             *int64   `json:"idPolje"`
	Name           string   `json:"nazPolje"`
	VoltageLevel   *float64 `json:"napRazina"`
	TypeCode       *string  `json:"oznVrPolje"`
	EquipmentCount int64    `json:"brojUredaja"`
}

type DeviceChecklistDTO struct {
	EquipmentID  int64                   `json:"idUred"`
	Label        string                  `json:"natpPlocica"`
	SerialNumber string                  `json:"tvBroj"`
	TypeCode     string                  `json:"oznVrUred"`
	TypeName     string                  `json:"nazVrUred"`
	FieldID      *int64                  `json:"idPolje"`
	FieldName    *string                 `json:"nazPolje"`
	VoltageLevel *float64                `json:"napRazina"`
	Parameters   []ParameterChecklistDTO `json:"parametri"`
}

// ParameterChecklistDTO is one check with the default the client pre-fills.
type ParameterChecklistDTO struct {
	ID              int64           `json:"idParametra"`
	Name            string          `json:"nazParametra"`
	Kind            domain.DataKind `json:"tipPodataka"`
	Min             *float64        `json:"minVrijednost"`
	Max             *float64        `json:"maxVrijednost"`
	Unit            *string         `json:"mjernaJedinica"`
	Required        bool            `json:"obavezan"`
	Order           int             `json:"redoslijed"`
	DefaultBool     *bool           `json:"defaultBool"`
	DefaultNum      *float64        `json:"defaultNum"`
	DefaultTxt      *string         `json:"defaultTxt"`
	LastInspectedAt *time.Time      `json:"zadnjiPregledAt"`
}

type facilityService struct {
	reference   repository.ReferenceRepository
	inspections repository.InspectionsRepository
	logger      *zap.Logger
}

func NewFacilityService(reference repository.ReferenceRepository, inspections repository.InspectionsRepository, logger *zap.Logger) FacilityService {
	return &facilityService{reference: reference, inspections: inspections, logger: logger}
}

func (s *facilityService) requireFacility(ctx context.Context, facilityID int64) error {
	ok, err := s.reference.FacilityExists(ctx, facilityID)
	if err != nil {
		return fmt.Errorf("check facility %d: %w", facilityID, err)
	}
	if !ok {
		return domain.NotFound(domain.MsgFacilityNotFound)
	}
	return nil
}

func (s *facilityService) ListFacilities(ctx context.Context) ([]FacilitySummaryDTO, error) {
	rows, err := s.reference.ListFacilities(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]FacilitySummaryDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, FacilitySummaryDTO{
			ID:             r.ID,
			Name:           r.Name,
			Location:       optString(r.Location),
			TypeCode:       r.TypeCode,
			Inspections:    r.InspectionCount,
			LastInspection: r.LastInspection,
			LastInspector:  optString(r.LastInspector),
		})
	}
	return out, nil
}

func (s *facilityService) ListFields(ctx context.Context, facilityID int64) ([]FieldDTO, error) {
	if err := s.requireFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	fields, err := s.reference.ListFieldsWithCount(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	out := make([]FieldDTO, 0, len(fields)+1)
	for _, f := range fields {
		id, voltage, code := f.ID, f.VoltageLevel, f.TypeCode
		out = append(out, FieldDTO{
			ID:             &id,
			Name:           f.Name,
			VoltageLevel:   &voltage,
			TypeCode:       &code,
			EquipmentCount: f.EquipmentCount,
		})
	}

	fieldless, err := s.reference.CountFieldlessEquipment(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if fieldless > 0 {
		out = append(out, FieldDTO{Name: domain.FieldlessName, EquipmentCount: fieldless})
	}
	return out, nil
}

func (s *facilityService) BuildChecklist(ctx context.Context, facilityID int64, fieldID *int64) ([]DeviceChecklistDTO, error) {
	if err := s.requireFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	if fieldID == nil {
		return nil, domain.Validation(domain.MsgFieldRequired)
	}

	equipment, err := s.reference.ListEquipment(ctx, facilityID, *fieldID)
	if err != nil {
		return nil, err
	}
	if len(equipment) == 0 {
		return []DeviceChecklistDTO{}, nil
	}

	ids := make([]int64, 0, len(equipment))
	for _, e := range equipment {
		ids = append(ids, e.ID)
	}
	latestRows, err := s.inspections.LatestItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	latest := make(map[domain.ItemKey]domain.LatestItem, len(latestRows))
	for _, l := range latestRows {
		latest[domain.ItemKey{EquipmentID: l.Item.EquipmentID, ParameterID: l.Item.ParameterID}] = l
	}

	paramsByType := map[int64][]domain.Parameter{}
	out := make([]DeviceChecklistDTO, 0, len(equipment))
	for _, e := range equipment {
		params, ok := paramsByType[e.TypeID]
		if !ok {
			params, err = s.reference.ParametersByType(ctx, e.TypeID)
			if err != nil {
				return nil, err
			}
			paramsByType[e.TypeID] = params
		}

		dev := DeviceChecklistDTO{
			EquipmentID:  e.ID,
			Label:        e.Label,
			SerialNumber: e.SerialNumber,
			TypeCode:     e.Type.Code,
			TypeName:     e.Type.Name,
			Parameters:   make([]ParameterChecklistDTO, 0, len(params)),
		}
		if e.Field != nil {
			id, name, voltage := e.Field.ID, e.Field.Name, e.Field.VoltageLevel
			dev.FieldID, dev.FieldName, dev.VoltageLevel = &id, &name, &voltage
		}

		for _, p := range params {
			dev.Parameters = append(dev.Parameters, checklistEntry(p, latest, e.ID))
		}
		out = append(out, dev)
	}

	s.logger.Debug("Checklist built",
		zap.Int64("facility_id", facilityID),
		zap.Int64("field_id", *fieldID),
		zap.Int("devices", len(out)),
		zap.Int("prefilled", len(latest)),
	)
	return out, nil
}

func (s *facilityService) InspectionHistory(ctx context.Context, facilityID int64) ([]domain.ExportRow, error) {
	if err := s.requireFacility(ctx, facilityID); err != nil {
		return nil, err
	}
	return s.inspections.ListExportRows(ctx, facilityID)
}

// checklistEntry pre-fills from the latest recorded value; a BOOLEAN check
// never inspected before defaults to true.
func checklistEntry(p domain.Parameter, latest map[domain.ItemKey]domain.LatestItem, equipmentID int64) ParameterChecklistDTO {
	entry := ParameterChecklistDTO{
		ID:       p.ID,
		Name:     p.Name,
		Kind:     p.Kind,
		Min:      p.Min,
		Max:      p.Max,
		Unit:     optString(p.Unit),
		Required: p.Required,
		Order:    p.Order,
	}
	if last, ok := latest[domain.ItemKey{EquipmentID: equipmentID, ParameterID: p.ID}]; ok {
		entry.DefaultBool, entry.DefaultNum, entry.DefaultTxt = last.Item.Value.Parts()
		at := last.InspectedAt()
		entry.LastInspectedAt = &at
	} else if p.Kind == domain.KindBoolean {
		yes := true
		entry.DefaultBool = &yes
	}
	return entry
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
