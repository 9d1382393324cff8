package domain

import (
	"fmt"
	"strings"
)

// DataKind is the value type a parameter expects.
type DataKind string

const (
	KindBoolean DataKind = "BOOLEAN"
	KindNumeric DataKind = "NUMERIC"
	KindText    DataKind = "TEXT"
)

// ParseDataKind accepts the kind case-insensitively.
func ParseDataKind(s string) (DataKind, error) {
	switch k := DataKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case KindBoolean, KindNumeric, KindText:
		return k, nil
	default:
		return "", fmt.Errorf("unknown data kind %q", s)
	}
}

// Parameter is a check definition scoped to an equipment type (table parametar_provjere).
type Parameter struct {
	ID          int64    `db:"id_parametra"`
	Name        string   `db:"naz_parametra"`
	Kind        DataKind `db:"tip_podataka"`
	Min         *float64 `db:"min_vrijednost"` // NUMERIC only
	Max         *float64 `db:"max_vrijednost"` // NUMERIC only
	Unit        string   `db:"mjerna_jedinica"`
	Required    bool     `db:"obavezan"`
	Order       int      `db:"redoslijed"`
	Description string   `db:"opis"`
	TypeID      int64    `db:"id_vr_ured"`
}
