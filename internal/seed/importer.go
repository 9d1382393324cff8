package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"elektropregled/internal/domain"
	"elektropregled/internal/repository"
)

// Report counts what an import wrote.
type Report struct {
	Facilities int
	Fields     int
	Types      int
	Parameters int
	Equipment  int
	// Skipped holds ids of devices whose type code was not in the workbook.
	Skipped []int64
}

// Importer writes a parsed workbook through a ReferenceSeeder in one unit.
type Importer struct {
	seeder repository.ReferenceSeeder
	logger *zap.Logger
}

func NewImporter(seeder repository.ReferenceSeeder, logger *zap.Logger) *Importer {
	return &Importer{seeder: seeder, logger: logger}
}

// Import upserts the workbook. user, when non-nil, is created or updated
// along with the reference data. Any write failure aborts the whole import.
func (i *Importer) Import(ctx context.Context, wb *Workbook, mapping ChecklistMapping, user *domain.User) (*Report, error) {
	for _, w := range wb.Warnings {
		i.logger.Warn("Workbook warning", zap.String("detail", w))
	}

	var report Report
	err := i.seeder.Seed(ctx, func(w repository.ReferenceWriter) error {
		report = Report{}
		for _, f := range wb.Facilities {
			if err := w.UpsertFacility(ctx, f); err != nil {
				return fmt.Errorf("facility %d: %w", f.ID, err)
			}
			report.Facilities++
		}
		for _, f := range wb.Fields {
			if err := w.UpsertField(ctx, f); err != nil {
				return fmt.Errorf("field %d: %w", f.ID, err)
			}
			report.Fields++
		}

		typeIDs := make(map[string]int64, len(wb.Types))
		for _, t := range wb.Types {
			id, err := w.UpsertEquipmentType(ctx, t.Code, t.Name)
			if err != nil {
				return fmt.Errorf("equipment type %s: %w", t.Code, err)
			}
			typeIDs[t.Code] = id
			report.Types++

			for _, p := range mapping.checksFor(t.Code, id) {
				if err := w.UpsertParameter(ctx, p); err != nil {
					return fmt.Errorf("parameter %q of %s: %w", p.Name, t.Code, err)
				}
				report.Parameters++
			}
		}

		for _, e := range wb.Equipment {
			typeID, ok := typeIDs[e.TypeCode]
			if !ok {
				i.logger.Warn("Unknown equipment type, skipping device",
					zap.Int64("id_ured", e.ID),
					zap.String("ozn_vr_ured", e.TypeCode),
				)
				report.Skipped = append(report.Skipped, e.ID)
				continue
			}
			if err := w.UpsertEquipment(ctx, domain.Equipment{
				ID:           e.ID,
				Label:        e.Label,
				SerialNumber: e.SerialNumber,
				FacilityID:   e.FacilityID,
				FieldID:      e.FieldID,
				TypeID:       typeID,
			}); err != nil {
				return fmt.Errorf("equipment %d: %w", e.ID, err)
			}
			report.Equipment++
		}

		if user != nil {
			if err := w.UpsertUser(ctx, *user); err != nil {
				return fmt.Errorf("user %s: %w", user.Username, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	i.logger.Info("Reference data imported",
		zap.Int("facilities", report.Facilities),
		zap.Int("fields", report.Fields),
		zap.Int("types", report.Types),
		zap.Int("parameters", report.Parameters),
		zap.Int("equipment", report.Equipment),
		zap.Int("skipped", len(report.Skipped)),
	)
	return &report, nil
}
