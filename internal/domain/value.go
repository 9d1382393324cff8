package domain

import "strconv"

// Value is the recorded value of an inspection item: empty, or exactly one of
// a boolean, a number or a text.
type Value struct {
	kind DataKind
	b    bool
	n    float64
	s    string
}

// BoolValue wraps a boolean reading.
func BoolValue(b bool) Value { return Value{kind: KindBoolean, b: b} }

// NumberValue wraps a numeric reading.
func NumberValue(n float64) Value { return Value{kind: KindNumeric, n: n} }

// TextValue wraps a text reading.
func TextValue(s string) Value { return Value{kind: KindText, s: s} }

// NewValue builds a Value from the three nullable wire members. At most one
// may be set.
func NewValue(b *bool, n *float64, s *string) (Value, error) {
	set := 0
	if b != nil {
		set++
	}
	if n != nil {
		set++
	}
	if s != nil {
		set++
	}
	if set > 1 {
		return Value{}, Validation(MsgSingleValue)
	}
	switch {
	case b != nil:
		return BoolValue(*b), nil
	case n != nil:
		return NumberValue(*n), nil
	case s != nil:
		return TextValue(*s), nil
	}
	return Value{}, nil
}

// Kind is the populated member, or "" for the empty value.
func (v Value) Kind() DataKind { return v.kind }

// IsEmpty reports whether no member is populated.
func (v Value) IsEmpty() bool { return v.kind == "" }

func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBoolean }

func (v Value) Number() (float64, bool) { return v.n, v.kind == KindNumeric }

func (v Value) Text() (string, bool) { return v.s, v.kind == KindText }

// Parts splits v back into the nullable members used by storage and the wire.
func (v Value) Parts() (b *bool, n *float64, s *string) {
	switch v.kind {
	case KindBoolean:
		x := v.b
		b = &x
	case KindNumeric:
		x := v.n
		n = &x
	case KindText:
		x := v.s
		s = &x
	}
	return b, n, s
}

// String renders the value for reports.
func (v Value) String() string {
	switch v.kind {
	case KindBoolean:
		if v.b {
			return "DA"
		}
		return "NE"
	case KindNumeric:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindText:
		return v.s
	}
	return ""
}
