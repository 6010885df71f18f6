// Package projection turns a tabular query result into an ordered list of
// named metric emissions.
//
// The projector knows nothing about what the columns mean. It only decides
// which fields become metrics and what they are called, based on a Mode and
// a naming scheme. Field values are forwarded verbatim.
package projection

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindNull is an SQL NULL.
	KindNull Kind = iota
	// KindText is a non-numeric field.
	KindText
	// KindNumeric is a field the database reported as a number.
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Value is a single scalar field. Numeric values keep the exact text the
// server sent; nothing is parsed or rounded.
type Value struct {
	kind Kind
	text string
}

// Null returns the NULL value.
func Null() Value {
	return Value{kind: KindNull}
}

// Text returns a text value.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Numeric returns a numeric value holding s verbatim.
func Numeric(s string) Value {
	return Value{kind: KindNumeric, text: s}
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// String returns the verbatim field text. NULL renders as "".
func (v Value) String() string {
	return v.text
}
