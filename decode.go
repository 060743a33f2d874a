package formkit

import (
	"sort"
	"strconv"
	"strings"
)

type floater interface {
	Float64() (float64, error)
}

// DecodeValue tags a JSON-shaped value according to t. ok is false when the
// raw value cannot represent t. nil and, for numbers, blank strings decode to
// the zero Value. Numeric strings are accepted for number fields because
// older records were captured straight from text inputs.
func DecodeValue(t FieldType, raw any) (Value, bool) {
	if raw == nil {
		return Value{}, true
	}
	switch t {
	case TypeNumber:
		switch n := raw.(type) {
		case float64:
			return Number(n), true
		case int:
			return Number(float64(n)), true
		case int64:
			return Number(float64(n)), true
		case string:
			s := strings.TrimSpace(n)
			if s == "" {
				return Value{}, true
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Value{}, false
			}
			return Number(f), true
		case floater:
			f, err := n.Float64()
			if err != nil {
				return Value{}, false
			}
			return Number(f), true
		}
		return Value{}, false
	case TypeText, TypeDate, TypeSelect:
		s, ok := raw.(string)
		if !ok {
			return Value{}, false
		}
		switch t {
		case TypeDate:
			return Date(s), true
		case TypeSelect:
			return Choice(s), true
		}
		return Text(s), true
	}
	return Value{}, false
}

// DecodeRecord converts wire data into a Record using the schema's declared
// types. Keys without a field are kept as Text or Number so the unknown-key
// policy of ValidateInstance can decide about them. Values that cannot be
// represented are reported as type_mismatch issues; the remaining keys are
// still decoded.
func DecodeRecord(s Schema, raw map[string]any) (Record, error) {
	out := make(Record, len(raw))
	var iss Issues
	base := Root().Field("data")
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rv := raw[k]
		if f, ok := s.Field(k); ok {
			v, ok := DecodeValue(f.Type, rv)
			if !ok {
				iss = AppendIssues(iss, base.Field(k).Issue(CodeTypeMismatch, "field", k, "expected", string(f.Type)))
				continue
			}
			if v.Kind() != KindNone {
				out[k] = v
			}
			continue
		}
		switch x := rv.(type) {
		case nil:
		case string:
			out[k] = Text(x)
		default:
			if v, ok := DecodeValue(TypeNumber, x); ok {
				out[k] = v
				continue
			}
			iss = AppendIssues(iss, base.Field(k).Issue(CodeTypeMismatch, "field", k, "expected", "text"))
		}
	}
	if len(iss) > 0 {
		return out, iss
	}
	return out, nil
}
