package domain

// EquipmentType groups equipment sharing one checklist (table vrsta_uredaja).
type EquipmentType struct {
	ID   int64  `db:"id_vr_ured"`
	Code string `db:"ozn_vr_ured"` // VARCHAR(5), UNIQUE
	Name string `db:"naz_vr_ured"` // VARCHAR(50), UNIQUE
}

// Equipment is an inspected device (table uredaj).
type Equipment struct {
	ID           int64  `db:"id_ured"`
	Label        string `db:"natp_plocica"` // nameplate
	SerialNumber string `db:"tv_broj"`      // factory number, UNIQUE
	FacilityID   int64  `db:"id_postr"`
	FieldID      *int64 `db:"id_polje"` // nil: directly on the facility
	TypeID       int64  `db:"id_vr_ured"`

	// resolved joins
	Field *Field
	Type  EquipmentType
}
