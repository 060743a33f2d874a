package formkit

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// ValueKind tags a Value.
type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindText
	KindNumber
	KindDate
	KindChoice
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindChoice:
		return "choice"
	default:
		return "none"
	}
}

// KindFor returns the value tag a field of type t stores.
func KindFor(t FieldType) ValueKind {
	switch t {
	case TypeText:
		return KindText
	case TypeNumber:
		return KindNumber
	case TypeDate:
		return KindDate
	case TypeSelect:
		return KindChoice
	default:
		return KindNone
	}
}

// Value is one instance datum, tagged by the kind of field it belongs to.
// The zero Value is KindNone and counts as absent.
type Value struct {
	kind ValueKind
	str  string
	num  float64
}

// Text is a text field value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Number is a number field value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Date is a date field value. The string is stored as given.
func Date(s string) Value { return Value{kind: KindDate, str: s} }

// Choice is a select field value.
func Choice(s string) Value { return Value{kind: KindChoice, str: s} }

// Kind returns the tag.
func (v Value) Kind() ValueKind { return v.kind }

// Float returns the numeric payload of a Number value.
func (v Value) Float() (float64, bool) { return v.num, v.kind == KindNumber }

// String renders the payload as text. Numbers use the shortest form.
func (v Value) String() string {
	if v.kind == KindNumber {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

// Empty reports whether the value counts as "no entry": KindNone or an
// empty string payload.
func (v Value) Empty() bool {
	switch v.kind {
	case KindNone:
		return true
	case KindNumber:
		return false
	default:
		return v.str == ""
	}
}

// MarshalJSON writes numbers as JSON numbers and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNone:
		return []byte("null"), nil
	case KindNumber:
		return json.Marshal(v.num)
	default:
		return json.Marshal(v.str)
	}
}

// Record maps field names to values.
type Record map[string]Value

// Clone returns a shallow copy; Values are immutable.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Raw converts the record into JSON-shaped values for transport.
func (r Record) Raw() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		switch v.kind {
		case KindNone:
			out[k] = nil
		case KindNumber:
			out[k] = v.num
		default:
			out[k] = v.str
		}
	}
	return out
}
