package domain

import "time"

// Facility is a substation (table postrojenje).
type Facility struct {
	ID       int64  `db:"id_postr"`
	TypeCode string `db:"ozn_vr_postr"` // VARCHAR(10), NOT NULL
	Name     string `db:"naz_postr"`    // VARCHAR(100), NOT NULL, UNIQUE
	Location string `db:"lokacija"`     // VARCHAR(150), nullable
}

// FacilitySummary is a facility with its inspection statistics.
type FacilitySummary struct {
	Facility
	InspectionCount int64
	LastInspection  *time.Time // COALESCE(end, start, created_at) of the latest inspection
	LastInspector   string     // login name of whoever made the latest inspection
}

// Field is a bay inside a facility (table polje).
type Field struct {
	ID           int64   `db:"id_polje"`
	FacilityID   int64   `db:"id_postr"`
	VoltageLevel float64 `db:"nap_razina"`   // kV
	TypeCode     string  `db:"ozn_vr_polje"` // VARCHAR(20)
	Name         string  `db:"naz_polje"`
}

// FieldWithCount is a field plus the number of equipment rows assigned to it.
type FieldWithCount struct {
	Field
	EquipmentCount int64
}

// NoField selects equipment that sits directly on the facility.
const NoField int64 = 0

// FieldlessName labels the virtual field of equipment without a bay.
const FieldlessName = "Direktno na postrojenju"
