package repository

import (
	"context"

	"github.com/google/uuid"

	"elektropregled/internal/domain"
)

// InspectionsRepository stores synced inspections and answers history queries.
type InspectionsRepository interface {
	// LatestItems returns at most one item per (equipment, parameter) for the
	// given equipment: the one whose inspection ended last (NULL end last),
	// then started last (NULL start last), then the highest item id.
	LatestItems(ctx context.Context, equipmentIDs []int64) ([]domain.LatestItem, error)

	// ListExportRows returns every item of the facility's inspections, newest
	// inspection first.
	ListExportRows(ctx context.Context, facilityID int64) ([]domain.ExportRow, error)

	// WithinTx runs fn in one transaction. Any error from fn rolls back.
	WithinTx(ctx context.Context, fn func(tx SyncTx) error) error
}

// SyncTx is the transactional view used by one sync request. Lookups that
// miss wrap sql.ErrNoRows.
type SyncTx interface {
	InspectionExists(ctx context.Context, localID uuid.UUID) (bool, error)
	ItemExists(ctx context.Context, localID uuid.UUID) (bool, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	FacilityExists(ctx context.Context, facilityID int64) (bool, error)
	EquipmentExists(ctx context.Context, equipmentID int64) (bool, error)
	GetParameter(ctx context.Context, parameterID int64) (*domain.Parameter, error)

	// InsertInspection and InsertItem return the server id. A duplicate
	// client-local id yields domain.ErrConflict; a duplicate
	// (inspection, parameter, equipment) yields domain.ErrValidation.
	InsertInspection(ctx context.Context, in *domain.Inspection) (int64, error)
	InsertItem(ctx context.Context, item *domain.InspectionItem) (int64, error)
}
