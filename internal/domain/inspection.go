package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus of an inspection.
type SyncStatus string

const (
	SyncPending SyncStatus = "PENDING"
	SyncSyncing SyncStatus = "SYNCING"
	SyncSynced  SyncStatus = "SYNCED"
	SyncFailed  SyncStatus = "FAILED"
)

// Inspection is one visit to a facility (table pregled).
// LocalID is assigned by the mobile client and is unique across all inspections.
type Inspection struct {
	ID         int64      `db:"id_preg"`
	LocalID    uuid.UUID  `db:"lokalni_id"` // UNIQUE (uq_pregled_lokalni_id)
	Status     SyncStatus `db:"status_sync"`
	Start      time.Time  `db:"pocetak"`
	End        *time.Time `db:"kraj"`
	Note       string     `db:"napomena"`
	SyncError  string     `db:"sync_error"`
	UserID     int64      `db:"id_korisnika"`
	FacilityID int64      `db:"id_postr"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  *time.Time `db:"updated_at"`
}

// InspectionItem is one recorded value for an (equipment, parameter) pair
// (table stavka_pregleda). (InspectionID, ParameterID, EquipmentID) is unique.
type InspectionItem struct {
	ID           int64     `db:"id_stavke"`
	LocalID      uuid.UUID `db:"lokalni_id"` // UNIQUE (uq_stavka_pregleda_lokalni_id)
	Value        Value
	Note         string    `db:"napomena"`
	EnteredAt    time.Time `db:"vrijeme_unosa"`
	InspectionID int64     `db:"id_preg"`
	EquipmentID  int64     `db:"id_ured"`
	ParameterID  int64     `db:"id_parametra"`
}

// LatestItem is an item together with the timing of the inspection that produced it.
type LatestItem struct {
	Item              InspectionItem
	InspectionStart   *time.Time
	InspectionEnd     *time.Time
	InspectionCreated time.Time
}

// InspectedAt is the inspection end, else its start, else its creation time.
func (l LatestItem) InspectedAt() time.Time {
	if l.InspectionEnd != nil {
		return *l.InspectionEnd
	}
	if l.InspectionStart != nil {
		return *l.InspectionStart
	}
	return l.InspectionCreated
}

// ItemKey identifies an (equipment, parameter) pair.
type ItemKey struct {
	EquipmentID int64
	ParameterID int64
}

// ExportRow is one line of the inspection history export.
type ExportRow struct {
	InspectionID   int64
	InspectionLID  uuid.UUID
	Start          time.Time
	End            *time.Time
	Username       string
	EquipmentLabel string
	SerialNumber   string
	ParameterName  string
	Kind           DataKind
	Value          Value
	Unit           string
	Note           string
	EnteredAt      time.Time
}
