package seed

import (
	"encoding/json"
	"fmt"
	"io"

	"elektropregled/internal/domain"
)

// ChecklistItem is one check of an equipment type as written in the mapping file.
type ChecklistItem struct {
	Name        string   `json:"naz_parametra"`
	Kind        string   `json:"tip_podataka"`
	Min         *float64 `json:"min_vrijednost"`
	Max         *float64 `json:"max_vrijednost"`
	Unit        string   `json:"mjerna_jedinica"`
	Required    *bool    `json:"obavezan"`
	Order       *int     `json:"redoslijed"`
	Description string   `json:"opis"`
}

// ChecklistMapping maps an equipment type code to its checks.
type ChecklistMapping map[string][]ChecklistItem

// LoadChecklistMapping decodes a mapping file.
func LoadChecklistMapping(r io.Reader) (ChecklistMapping, error) {
	var m ChecklistMapping
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode checklist mapping: %w", err)
	}
	return m, nil
}

// DefaultChecklist is used for types the mapping does not list.
var DefaultChecklist = []ChecklistItem{
	{Name: "Vizualna provjera", Kind: string(domain.KindBoolean), Required: boolPtr(true), Order: intPtr(1), Description: "Vizualna provjera općeg stanja"},
	{Name: "Napomena", Kind: string(domain.KindText), Required: boolPtr(false), Order: intPtr(2), Description: "Dodatne napomene"},
}

// checksFor returns the parameters of an equipment type. An unknown kind
// becomes TEXT, NUMERIC without a unit gets "-", required defaults to true
// and a missing order falls back to the position in the list.
func (m ChecklistMapping) checksFor(code string, typeID int64) []domain.Parameter {
	items := m[code]
	if len(items) == 0 {
		items = DefaultChecklist
	}
	out := make([]domain.Parameter, 0, len(items))
	for i, it := range items {
		kind, err := domain.ParseDataKind(it.Kind)
		if err != nil {
			kind = domain.KindText
		}
		p := domain.Parameter{
			Name:        it.Name,
			Kind:        kind,
			Unit:        it.Unit,
			Required:    true,
			Order:       i + 1,
			Description: it.Description,
			TypeID:      typeID,
		}
		if kind == domain.KindNumeric {
			p.Min, p.Max = it.Min, it.Max
			if p.Unit == "" {
				p.Unit = "-"
			}
		}
		if it.Required != nil {
			p.Required = *it.Required
		}
		if it.Order != nil {
			p.Order = *it.Order
		}
		out = append(out, p)
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
