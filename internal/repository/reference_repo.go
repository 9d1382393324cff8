package repository

import (
	"context"

	"elektropregled/internal/domain"
)

// ReferenceRepository reads the read-mostly reference data: facilities,
// fields, equipment and check parameters.
type ReferenceRepository interface {
	FacilityExists(ctx context.Context, facilityID int64) (bool, error)

	// ListFacilities returns every facility ordered by id, with inspection statistics.
	ListFacilities(ctx context.Context) ([]domain.FacilitySummary, error)

	// ListFieldsWithCount orders by voltage level DESC, then name.
	ListFieldsWithCount(ctx context.Context, facilityID int64) ([]domain.FieldWithCount, error)

	CountFieldlessEquipment(ctx context.Context, facilityID int64) (int64, error)

	// ListEquipment returns equipment of a facility ordered by id.
	// fieldID == domain.NoField selects equipment without a field.
	ListEquipment(ctx context.Context, facilityID, fieldID int64) ([]domain.Equipment, error)

	// GetEquipment returns the requested rows with field and type resolved.
	// Unknown ids are skipped.
	GetEquipment(ctx context.Context, ids ...int64) ([]domain.Equipment, error)

	ParameterSource
}

// ParameterSource returns the check parameters of an equipment type ordered
// by display order.
type ParameterSource interface {
	ParametersByType(ctx context.Context, typeID int64) ([]domain.Parameter, error)
}

// ReferenceWriter upserts reference data. Used by the seed importer.
type ReferenceWriter interface {
	UpsertFacility(ctx context.Context, f domain.Facility) error
	UpsertField(ctx context.Context, f domain.Field) error
	// UpsertEquipmentType keys on the type code and returns the row id.
	UpsertEquipmentType(ctx context.Context, code, name string) (int64, error)
	// UpsertParameter keys on (type, name).
	UpsertParameter(ctx context.Context, p domain.Parameter) error
	UpsertEquipment(ctx context.Context, e domain.Equipment) error
	UpsertUser(ctx context.Context, u domain.User) error
}

// ReferenceSeeder runs fn with a writer whose changes commit together.
type ReferenceSeeder interface {
	Seed(ctx context.Context, fn func(w ReferenceWriter) error) error
}
