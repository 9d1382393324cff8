package service

import (
	"strings"

	"elektropregled/internal/domain"
)

// ValidateItem checks a recorded value against its parameter definition and
// reports the first violation only. Every kind demands its own member, even
// for parameters not marked required. More than one populated member is
// rejected earlier, by domain.NewValue.
func ValidateItem(v domain.Value, p domain.Parameter) error {
	switch p.Kind {
	case domain.KindNumeric:
		n, ok := v.Number()
		if !ok {
			return domain.Validation(domain.MsgNumberRequired)
		}
		if p.Min != nil && n < *p.Min {
			return domain.Validation(domain.MsgBelowMinimum)
		}
		if p.Max != nil && n > *p.Max {
			return domain.Validation(domain.MsgAboveMaximum)
		}
	case domain.KindBoolean:
		if _, ok := v.Bool(); !ok {
			return domain.Validation(domain.MsgBoolRequired)
		}
	case domain.KindText:
		if s, ok := v.Text(); !ok || strings.TrimSpace(s) == "" {
			return domain.Validation(domain.MsgTextRequired)
		}
	}
	return nil
}
